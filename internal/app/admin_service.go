package app

import (
	"context"
	"fmt"
	"slices"

	"discord_intro_bot/internal/domain/guildconfig"

	"github.com/bwmarrin/discordgo"
)

// Actor is the member invoking an admin operation.
type Actor struct {
	UserID      string
	Permissions int64 // guild permission bits as computed by Discord for the interaction
}

type AdminService struct {
	configs      guildconfig.Repository
	developerIDs []string
}

func NewAdminService(configs guildconfig.Repository, developerIDs []string) *AdminService {
	return &AdminService{
		configs:      configs,
		developerIDs: developerIDs,
	}
}

// Authorized reports whether actor may change intro settings: configured
// developers always may, everyone else needs Administrator or Manage Server.
func (s *AdminService) Authorized(actor Actor) bool {
	if slices.Contains(s.developerIDs, actor.UserID) {
		return true
	}
	return actor.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0
}

// SetConfig stores value under the named key. An empty value clears it.
func (s *AdminService) SetConfig(ctx context.Context, actor Actor, guildID, keyName, value string) (guildconfig.Key, error) {
	if !s.Authorized(actor) {
		return "", ErrAdminNotAuthorized
	}

	key, err := guildconfig.ParseKey(keyName)
	if err != nil {
		return "", err
	}

	if err := s.configs.Set(ctx, guildID, key, value); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	return key, nil
}

// GetConfig returns the stored settings for guildID.
func (s *AdminService) GetConfig(ctx context.Context, actor Actor, guildID string) (guildconfig.SubmissionConfig, error) {
	if !s.Authorized(actor) {
		return guildconfig.SubmissionConfig{}, ErrAdminNotAuthorized
	}

	cfg, err := s.configs.Get(ctx, guildID)
	if err != nil {
		return guildconfig.SubmissionConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
