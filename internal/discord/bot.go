// Package discord hosts the pyramid bot on Discord guild text channels.
package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"pyramid-bot/internal/bot"
	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/dispatch"
)

// Bot is a Discord bot
type Bot struct {
	token     string
	handler   *bot.Bot
	queueSize int

	dg       *discordgo.Session
	dispatch *dispatch.Manager
	emitter  *Emitter
}

// NewBot creates a Discord host for handler. queueSize bounds each channel's
// backlog.
func NewBot(token string, handler *bot.Bot, queueSize int) *Bot {
	return &Bot{token: token, handler: handler, queueSize: queueSize}
}

// Run connects and serves until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.emitter = NewEmitter(dg)
	b.dispatch = dispatch.NewManager(dispatch.Options{
		QueueSize: b.queueSize,
		OnStop:    b.handler.Engine().Drop,
	}, func(ctx context.Context, msg chat.Message) {
		b.handler.Handle(ctx, b.emitter, msg)
	})
	defer b.dispatch.Close()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onChannelDelete)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] ✅ Discord bot %v is running in %d guilds.", r.User.Username, len(r.Guilds))
}

// onMessageCreate feeds guild messages to the channel's worker
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.GuildID == "" {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	perms, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		log.Printf("[WARN] Failed to resolve permissions of %s in %s: %v", m.Author.Username, m.ChannelID, err)
	}

	msg := toMessage(m, perms)
	b.emitter.Remember(m.ChannelID, m.GuildID, msg.User(), m.Author.ID)

	if err := b.dispatch.Submit(context.Background(), msg); err != nil {
		log.Printf("[ERR] Failed to queue message in %s: %v", m.ChannelID, err)
	}
}

// onChannelDelete forgets a deleted channel
func (b *Bot) onChannelDelete(s *discordgo.Session, c *discordgo.ChannelDelete) {
	if err := b.dispatch.Stop(c.ID); err == nil {
		log.Printf("[INFO] Channel %s deleted, pyramid state dropped", c.ID)
	}
}
