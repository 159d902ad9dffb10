package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"pyramid-bot/internal/chat"
)

// api is the part of *discordgo.Session the emitter needs.
type api interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberTimeout(guildID string, userID string, until *time.Time, options ...discordgo.RequestOption) error
}

// Emitter delivers intents through the Discord REST API. Timeout intents
// name users the way the engine does, so the emitter remembers which member
// id and guild belong to each name and channel it has seen.
type Emitter struct {
	api api

	mu     sync.RWMutex
	guilds map[string]string            // channel id -> guild id
	users  map[string]map[string]string // guild id -> normalised name -> user id
}

// NewEmitter wraps a session.
func NewEmitter(s api) *Emitter {
	return &Emitter{
		api:    s,
		guilds: make(map[string]string),
		users:  make(map[string]map[string]string),
	}
}

// Remember records that user (normalised name) with userID spoke in
// channelID of guildID.
func (e *Emitter) Remember(channelID, guildID, user, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.guilds[channelID] = guildID
	names, ok := e.users[guildID]
	if !ok {
		names = make(map[string]string)
		e.users[guildID] = names
	}
	names[user] = userID
}

func (e *Emitter) resolve(channelID, user string) (guildID, userID string, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	guildID, ok = e.guilds[channelID]
	if !ok {
		return "", "", false
	}
	userID, ok = e.users[guildID][chat.NormalizeUser(user)]
	return guildID, userID, ok
}

// Emit implements chat.Emitter.
func (e *Emitter) Emit(_ context.Context, in chat.Intent) error {
	switch in.Kind {
	case chat.IntentSendText:
		if _, err := e.api.ChannelMessageSend(in.Channel, in.Content); err != nil {
			return fmt.Errorf("send to %s: %w", in.Channel, err)
		}
		return nil
	case chat.IntentTimeout:
		guildID, userID, ok := e.resolve(in.Channel, in.User)
		if !ok {
			return fmt.Errorf("timeout %s: member not seen in channel %s", in.User, in.Channel)
		}
		until := time.Now().Add(in.Duration)
		if err := e.api.GuildMemberTimeout(guildID, userID, &until); err != nil {
			return fmt.Errorf("timeout %s: %w", in.User, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported intent %v", in.Kind)
	}
}
