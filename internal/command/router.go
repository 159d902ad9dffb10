package command

import (
	"context"
	"fmt"

	"pyramid-bot/internal/chat"
	"pyramid-bot/pkg/cmd"
)

// DefaultPrefix marks a chat line as a command.
const DefaultPrefix = "?"

// Router turns chat lines into command runs.
type Router struct {
	prefix   string
	registry *cmd.Registry
}

// NewRouter routes lines starting with prefix to commands in reg.
func NewRouter(prefix string, reg *cmd.Registry) *Router {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Router{prefix: prefix, registry: reg}
}

// Prefix returns the command prefix.
func (r *Router) Prefix() string { return r.prefix }

// Registry returns the command registry.
func (r *Router) Registry() *cmd.Registry { return r.registry }

// Handle runs the command msg names. handled is false when msg is not a
// command or names an unknown one. Intents queued before a failure are still
// returned.
func (r *Router) Handle(ctx context.Context, msg chat.Message) (intents []chat.Intent, handled bool, err error) {
	inv, ok := cmd.Parse(r.prefix, msg.Text)
	if !ok {
		return nil, false, nil
	}
	c := r.registry.Get(inv.Name)
	if c == nil {
		return nil, false, nil
	}

	mc := NewMessageContext(msg)
	inv.Data = mc
	if err := c.Run(ctx, inv); err != nil {
		return mc.Intents(), true, fmt.Errorf("command %s: %w", c.Name(), err)
	}
	return mc.Intents(), true, nil
}
