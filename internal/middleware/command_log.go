package middleware

import (
	"context"
	"log"

	"pyramid-bot/internal/command"
	"pyramid-bot/pkg/cmd"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			if mc, ok := command.FromInvocation(inv); ok {
				m := mc.Message
				if err != nil {
					log.Printf("[ERR] %s ran %s in %s: %v", m.Sender, inv.Name, m.Channel, err)
				} else {
					log.Printf("[INFO] %s ran %s in %s", m.Sender, inv.Name, m.Channel)
				}
			}
			return err
		})
	}
}
