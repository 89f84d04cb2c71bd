package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Client defines the Discord operations the submission pipeline needs.
// This keeps the application logic independent of the gateway session.
type Client interface {
	BotUserID() string
	GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) error
}
