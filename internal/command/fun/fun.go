// Package fun holds the small social commands.
package fun

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/command"
	"pyramid-bot/pkg/cmd"
)

type HelloCommand struct{}

func (c *HelloCommand) Name() string        { return "hello" }
func (c *HelloCommand) Aliases() []string   { return nil }
func (c *HelloCommand) Description() string { return "Say hello to yourself or someone else" }

func (c *HelloCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}
	sender := mc.Message.Sender
	target := sender
	if len(inv.Args) > 0 {
		target = strings.TrimPrefix(inv.Args[0], "@")
	}

	if chat.NormalizeUser(target) != mc.Message.User() {
		mc.Replyf("OhMyDog Herrow %s peepoHey <3", target)
	} else {
		mc.Replyf("OhMyDog Woof woof Herrow %s OhMyDog", target)
	}
	return nil
}

// Roller returns a number in [0, n).
type Roller func(n int) int

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// DefaultRoller draws from a shared seeded source.
func DefaultRoller(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}

type RouletteCommand struct {
	Roll     Roller
	Chambers int           // 1 in Chambers loses, 6 when zero
	Duration time.Duration // 2 minutes when zero
}

func (c *RouletteCommand) Name() string        { return "roulette" }
func (c *RouletteCommand) Aliases() []string   { return nil }
func (c *RouletteCommand) Description() string { return "1 in 6 chance of a short timeout" }

func (c *RouletteCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok {
		return nil
	}

	roll := c.Roll
	if roll == nil {
		roll = DefaultRoller
	}
	chambers := c.Chambers
	if chambers <= 0 {
		chambers = 6
	}
	d := c.Duration
	if d <= 0 {
		d = 2 * time.Minute
	}

	if roll(chambers) == 0 {
		mc.Timeout(mc.Message.User(), d, "roulette")
		mc.Reply("The die is rolled PauseChamp The chatter is lost PepeHands")
	} else {
		mc.Reply("The die is rolled PauseChamp The chatter survives widepeepoHappy")
	}
	return nil
}

type SpamCommand struct {
	Times int // 10 when zero
}

func (c *SpamCommand) Name() string        { return "spam" }
func (c *SpamCommand) Aliases() []string   { return nil }
func (c *SpamCommand) Description() string { return "Repeat a line ten times" }

func (c *SpamCommand) Run(_ context.Context, inv *cmd.Invocation) error {
	mc, ok := command.FromInvocation(inv)
	if !ok || inv.Raw == "" {
		return nil
	}
	times := c.Times
	if times <= 0 {
		times = 10
	}
	for i := 0; i < times; i++ {
		mc.Reply(inv.Raw)
	}
	return nil
}
