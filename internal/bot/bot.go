// Package bot ties the pyramid engine and the chat commands together behind a
// single message handler that host adapters feed.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/command"
	"pyramid-bot/internal/command/fun"
	"pyramid-bot/internal/command/modes"
	"pyramid-bot/internal/command/scores"
	"pyramid-bot/internal/middleware"
	"pyramid-bot/internal/pyramid"
	"pyramid-bot/internal/score"
	"pyramid-bot/pkg/cmd"
)

// Options configures a Bot.
type Options struct {
	Name   string // the bot's own chat name
	Prefix string // command prefix, "?" when empty
}

// Bot processes inbound chat messages into response intents.
type Bot struct {
	engine *pyramid.Engine
	router *command.Router
	name   string
	love   *regexp.Regexp
}

// New creates a Bot running msgs through engine and the commands in reg.
func New(engine *pyramid.Engine, reg *cmd.Registry, opts Options) *Bot {
	b := &Bot{
		engine: engine,
		router: command.NewRouter(opts.Prefix, reg),
		name:   opts.Name,
	}
	if opts.Name != "" {
		b.love = regexp.MustCompile(`(?i)sent love to @?` + regexp.QuoteMeta(opts.Name))
	}
	return b
}

// Engine returns the pyramid engine.
func (b *Bot) Engine() *pyramid.Engine { return b.engine }

// Router returns the command router.
func (b *Bot) Router() *command.Router { return b.router }

// HandleMessage runs msg through pyramid detection, the love reply and the
// commands, in that order. Intents are returned even when an error is.
func (b *Bot) HandleMessage(ctx context.Context, msg chat.Message) ([]chat.Intent, error) {
	var (
		intents []chat.Intent
		errs    []error
	)

	res, err := b.engine.Process(ctx, msg)
	intents = append(intents, res.Intents...)
	if err != nil {
		errs = append(errs, fmt.Errorf("pyramid: %w", err))
	}

	if b.love != nil && b.love.MatchString(msg.Text) {
		first, _, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
		intents = append(intents, chat.SendText(msg.Channel, "!love @"+first))
	}

	out, _, err := b.router.Handle(ctx, msg)
	intents = append(intents, out...)
	if err != nil {
		errs = append(errs, err)
	}

	return intents, errors.Join(errs...)
}

// Handle is HandleMessage followed by delivery through e. Failures are logged.
func (b *Bot) Handle(ctx context.Context, e chat.Emitter, msg chat.Message) {
	intents, err := b.HandleMessage(ctx, msg)
	if err != nil {
		log.Printf("[ERR] Failed to handle message from %s in %s: %v", msg.Sender, msg.Channel, err)
	}
	if err := chat.EmitAll(ctx, e, intents); err != nil {
		log.Printf("[ERR] Failed to deliver response in %s: %v", msg.Channel, err)
	}
}

// CommandDeps are the collaborators of the default command set.
type CommandDeps struct {
	Store             score.Store
	Engine            *pyramid.Engine
	Roulette          fun.RouletteCommand
	SpamRepeats       int
	HighScoresDefault int
}

// DefaultCommands registers every chat command on reg.
func DefaultCommands(reg *cmd.Registry, deps CommandDeps) {
	logged := middleware.WithCommandLogger()
	modOnly := middleware.WithModeratorOnly()

	scores.Register(reg, deps.Store, deps.HighScoresDefault, logged)
	modes.Register(reg, func(channel string) pyramid.ModeSetter {
		return deps.Engine.Modes(channel)
	}, middleware.WithChannelOnly(), modOnly, logged)

	roulette := deps.Roulette
	reg.MustRegister(
		cmd.Apply(&fun.HelloCommand{}, logged),
		cmd.Apply(&roulette, middleware.WithChannelOnly(), logged),
		cmd.Apply(&fun.SpamCommand{Times: deps.SpamRepeats}, middleware.WithChannelOnly(), modOnly, logged),
	)
}

// RouletteFromSeconds builds the roulette settings used by DefaultCommands.
func RouletteFromSeconds(chambers, seconds int) fun.RouletteCommand {
	return fun.RouletteCommand{
		Chambers: chambers,
		Duration: time.Duration(seconds) * time.Second,
	}
}
