package discord

import (
	"github.com/bwmarrin/discordgo"

	"pyramid-bot/internal/chat"
)

const (
	// permissions that make a member's pyramids at minimum height not count
	privilegedPerms = discordgo.PermissionModerateMembers |
		discordgo.PermissionManageMessages |
		discordgo.PermissionAdministrator
	// permissions that allow moderator-only commands
	moderatorPerms = discordgo.PermissionModerateMembers |
		discordgo.PermissionAdministrator
)

// toMessage converts a guild message, given the author's channel permissions.
func toMessage(m *discordgo.MessageCreate, perms int64) chat.Message {
	msg := chat.Message{
		Channel:    m.ChannelID,
		SenderID:   m.Author.ID,
		Sender:     m.Author.Username,
		Text:       m.Content,
		Privileged: perms&privilegedPerms != 0,
		Moderator:  perms&moderatorPerms != 0,
		Received:   m.Timestamp,
	}
	return msg
}
