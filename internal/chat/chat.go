// Package chat holds the platform-neutral message and response types shared by
// the pyramid engine, the command core and the host adapters.
package chat

import (
	"context"
	"strings"
	"time"
)

// Message is one inbound chat line as seen by a host adapter.
type Message struct {
	Channel    string // channel identifier, unique per host
	SenderID   string // platform user id, may be empty
	Sender     string // display name of the author
	Text       string
	Privileged bool // moderator / VIP badge or equivalent
	Moderator  bool
	Received   time.Time
}

// User returns the normalised identity used for scores and state.
func (m Message) User() string {
	return NormalizeUser(m.Sender)
}

// NormalizeUser lower-cases a user name and strips a leading mention marker.
func NormalizeUser(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}

// IntentKind identifies what a host should do with an Intent.
type IntentKind int

const (
	IntentSendText IntentKind = iota + 1
	IntentTimeout
)

func (k IntentKind) String() string {
	switch k {
	case IntentSendText:
		return "send-text"
	case IntentTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Intent is a response request produced by the engine or a command.
type Intent struct {
	Kind     IntentKind
	Channel  string
	Content  string        // IntentSendText
	User     string        // IntentTimeout
	Duration time.Duration // IntentTimeout
	Reason   string        // IntentTimeout, optional audit text
}

// SendText builds a send-text intent.
func SendText(channel, content string) Intent {
	return Intent{Kind: IntentSendText, Channel: channel, Content: content}
}

// Timeout builds a moderation timeout intent.
func Timeout(channel, user string, d time.Duration, reason string) Intent {
	return Intent{Kind: IntentTimeout, Channel: channel, User: user, Duration: d, Reason: reason}
}

// Emitter delivers intents to the chat platform.
type Emitter interface {
	Emit(ctx context.Context, intent Intent) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, intent Intent) error

func (f EmitterFunc) Emit(ctx context.Context, intent Intent) error { return f(ctx, intent) }

// EmitAll emits intents in order and stops at the first failure.
func EmitAll(ctx context.Context, e Emitter, intents []Intent) error {
	for _, in := range intents {
		if err := e.Emit(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
