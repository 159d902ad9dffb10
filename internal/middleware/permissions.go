// Package middleware holds cross-cutting command wrappers.
package middleware

import (
	"context"
	"log"

	"pyramid-bot/internal/command"
	"pyramid-bot/pkg/cmd"
)

// WithModeratorOnly silently skips the command unless the sender moderates
// the channel.
func WithModeratorOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			mc, ok := command.FromInvocation(inv)
			if !ok {
				return c.Run(ctx, inv)
			}
			if !mc.Message.Moderator {
				log.Printf("[INFO] %s is not a moderator, ignoring %s in %s", mc.Message.Sender, inv.Name, mc.Message.Channel)
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithChannelOnly skips commands that arrive without a channel, such as
// terminal invocations of chat-only commands.
func WithChannelOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if mc, ok := command.FromInvocation(inv); ok && mc.Message.Channel == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
