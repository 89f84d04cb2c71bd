package app

import (
	"context"
	"slices"

	"discord_intro_bot/internal/domain/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// GrantResult reports what Grant did.
type GrantResult struct {
	Granted     bool
	AlreadyHeld bool
}

// RoleGranter assigns the configured intro role to a member.
type RoleGranter struct {
	client discord.Client
	logger *logrus.Entry
}

func NewRoleGranter(client discord.Client, logger *logrus.Entry) *RoleGranter {
	return &RoleGranter{
		client: client,
		logger: logger.WithField("component", "role_granter"),
	}
}

// Grant gives roleID to memberID unless the member already holds it, in which
// case no write is issued. Failures are returned as *RoleGrantError.
func (g *RoleGranter) Grant(ctx context.Context, guildID, memberID, roleID string) (GrantResult, error) {
	fail := func(reason RoleGrantFailure, err error) (GrantResult, error) {
		return GrantResult{}, &RoleGrantError{Reason: reason, GuildID: guildID, MemberID: memberID, RoleID: roleID, Err: err}
	}

	roles, err := g.client.GuildRoles(ctx, guildID)
	if err != nil {
		return fail(RoleNotFound, err)
	}
	role := findRole(roles, roleID)
	if role == nil {
		return fail(RoleNotFound, nil)
	}

	member, err := g.client.GuildMember(ctx, guildID, memberID)
	if err != nil {
		return fail(MemberLookupFailed, err)
	}
	if slices.Contains(member.Roles, roleID) {
		return GrantResult{AlreadyHeld: true}, nil
	}

	self, err := g.client.GuildMember(ctx, guildID, g.client.BotUserID())
	if err != nil {
		return fail(RoleNotManageable, err)
	}
	if !canManageRole(guildID, self, roles, role) {
		return fail(RoleNotManageable, nil)
	}

	if err := g.client.AddMemberRole(ctx, guildID, memberID, roleID); err != nil {
		return fail(GrantFailed, err)
	}

	g.logger.WithFields(logrus.Fields{
		"guild_id":  guildID,
		"member_id": memberID,
		"role_id":   roleID,
	}).Info("Role granted")
	return GrantResult{Granted: true}, nil
}

func findRole(roles []*discordgo.Role, roleID string) *discordgo.Role {
	for _, r := range roles {
		if r.ID == roleID {
			return r
		}
	}
	return nil
}

// canManageRole applies Discord's rules for assigning a role: the bot needs
// Manage Roles (or Administrator) and a highest role ranked above the target.
// Integration-managed roles and @everyone can never be assigned.
func canManageRole(guildID string, self *discordgo.Member, roles []*discordgo.Role, target *discordgo.Role) bool {
	if target.Managed || target.ID == guildID {
		return false
	}

	var perms int64
	highest := -1
	if everyone := findRole(roles, guildID); everyone != nil {
		perms |= everyone.Permissions
	}
	for _, id := range self.Roles {
		r := findRole(roles, id)
		if r == nil {
			continue
		}
		perms |= r.Permissions
		if r.Position > highest {
			highest = r.Position
		}
	}

	if perms&(discordgo.PermissionManageRoles|discordgo.PermissionAdministrator) == 0 {
		return false
	}
	return highest > target.Position
}
