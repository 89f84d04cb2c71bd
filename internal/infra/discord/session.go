package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SessionClient implements the domain Discord client over a gateway session.
type SessionClient struct {
	session *discordgo.Session
}

func NewSessionClient(s *discordgo.Session) *SessionClient {
	return &SessionClient{session: s}
}

// BotUserID is only valid after the session has received READY.
func (c *SessionClient) BotUserID() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.ID
}

func (c *SessionClient) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	return c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
}

// GuildMember always goes to REST: without the members intent the state
// cache does not see role changes.
func (c *SessionClient) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	return c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (c *SessionClient) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (c *SessionClient) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return c.session.Channel(channelID, discordgo.WithContext(ctx))
}

func (c *SessionClient) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return err
}
