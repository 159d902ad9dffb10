// Package cmd provides a transport-agnostic command core: a command is something
// with a name, aliases, a description and Run(ctx, invocation). How a line of
// chat becomes an invocation and where replies go is decided by adapters.
package cmd

import "context"

// Invocation carries what any command runner can pass: the name the command
// was called by, its arguments and an opaque payload. Adapters set Data to
// their context (e.g. the chat message plus a reply buffer).
type Invocation struct {
	Name string
	Args []string
	Raw  string // argument text as typed, after the command name
	Data interface{}
}

// Command is the universal contract: identity plus execution. Permissions and
// transport-specific behaviour stay in middleware and adapters.
type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
