// Package command adapts the transport-agnostic pkg/cmd core to chat: it
// parses prefixed lines, runs the matching command with a MessageContext and
// collects the intents the command produced.
package command

import (
	"fmt"
	"time"

	"pyramid-bot/internal/chat"
	"pyramid-bot/pkg/cmd"
)

// MessageContext is the Invocation.Data of a chat command.
type MessageContext struct {
	Message chat.Message
	intents []chat.Intent
}

// NewMessageContext wraps msg for a command run.
func NewMessageContext(msg chat.Message) *MessageContext {
	return &MessageContext{Message: msg}
}

// Reply queues a text message to the invoking channel.
func (c *MessageContext) Reply(text string) {
	c.intents = append(c.intents, chat.SendText(c.Message.Channel, text))
}

// Replyf is Reply with formatting.
func (c *MessageContext) Replyf(format string, args ...interface{}) {
	c.Reply(fmt.Sprintf(format, args...))
}

// Timeout queues a moderation timeout in the invoking channel.
func (c *MessageContext) Timeout(user string, d time.Duration, reason string) {
	c.intents = append(c.intents, chat.Timeout(c.Message.Channel, user, d, reason))
}

// Intents returns everything queued so far.
func (c *MessageContext) Intents() []chat.Intent {
	return c.intents
}

// FromInvocation extracts the MessageContext, if inv carries one.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, bool) {
	mc, ok := inv.Data.(*MessageContext)
	return mc, ok
}
