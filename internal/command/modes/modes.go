// Package modes lets moderators inspect and flip pyramid modes per channel.
package modes

import (
	"context"
	"fmt"
	"strings"

	"pyramid-bot/internal/command"
	"pyramid-bot/internal/pyramid"
	"pyramid-bot/pkg/cmd"
)

// Source returns the mode registry of a channel.
type Source func(channel string) pyramid.ModeSetter

type ModeCommand struct {
	Modes Source
}

func (c *ModeCommand) Name() string        { return "mode" }
func (c *ModeCommand) Aliases() []string   { return nil }
func (c *ModeCommand) Description() string { return "Toggle a pyramid mode: <thief|destroy|timeout> [on|off]" }

func (c *ModeCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	sender := mc.Message.Sender
	modes := c.Modes(mc.Message.Channel)

	if len(inv.Args) == 0 {
		mc.Replyf("%s: modes :: %s", sender, describe(modes))
		return nil
	}

	name := strings.ToLower(inv.Args[0])
	var value *bool
	if len(inv.Args) > 1 {
		v, ok := parseSwitch(inv.Args[1])
		if !ok {
			mc.Replyf("%s: expected on or off, got %q", sender, inv.Args[1])
			return nil
		}
		value = &v
	}

	enabled, ok := modes.SetMode(name, value)
	if !ok {
		mc.Replyf("%s: %s mode is not recognised", sender, name)
		return nil
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	mc.Replyf("%s: %s mode was %s", sender, name, state)
	return nil
}

func describe(m pyramid.ModeSetter) string {
	names := m.ListModes()
	parts := make([]string, len(names))
	for i, n := range names {
		state := "off"
		if m.GetMode(n) {
			state = "on"
		}
		parts[i] = fmt.Sprintf("%s %s", n, state)
	}
	return strings.Join(parts, ", ")
}

func parseSwitch(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "on", "true", "enable", "enabled", "1":
		return true, true
	case "off", "false", "disable", "disabled", "0":
		return false, true
	}
	return false, false
}

// Register adds the mode command to reg. Callers normally pass a
// moderator-only middleware.
func Register(reg *cmd.Registry, src Source, mws ...cmd.Middleware) {
	reg.MustRegister(cmd.Apply(&ModeCommand{Modes: src}, mws...))
}
