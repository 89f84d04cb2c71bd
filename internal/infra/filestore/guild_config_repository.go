package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"discord_intro_bot/internal/domain/guildconfig"

	"github.com/sirupsen/logrus"
)

// guildEntry is the on-disk shape of one guild; null means unset.
type guildEntry struct {
	RoleID               *string `json:"roleId"`
	IntroNotifyChannelID *string `json:"introNotifyChannelId"`
	ChannelID            *string `json:"channelId"`
}

// GuildConfigRepository keeps every guild's settings in one JSON file keyed by
// guild ID. Writes replace the file atomically.
type GuildConfigRepository struct {
	path   string
	logger *logrus.Entry

	mu     sync.RWMutex
	guilds map[string]guildEntry
}

// Open loads path, creating an empty file if none exists. An empty or
// unreadable file is logged and treated as empty.
func Open(path string, logger *logrus.Entry) (*GuildConfigRepository, error) {
	r := &GuildConfigRepository{
		path:   path,
		logger: logger.WithField("component", "config_file"),
		guilds: make(map[string]guildEntry),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := r.flush(); err != nil {
			return nil, err
		}
		r.logger.WithField("path", path).Info("Created new config file")
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		r.logger.WithField("path", path).Warn("Config file is empty, using defaults")
		return r, nil
	}
	if err := json.Unmarshal(data, &r.guilds); err != nil {
		r.logger.WithError(err).WithField("path", path).Warn("Config file is corrupt, using defaults")
		r.guilds = make(map[string]guildEntry)
	}
	if r.guilds == nil { // file held a JSON null
		r.logger.WithField("path", path).Warn("Config file holds no guilds, using defaults")
		r.guilds = make(map[string]guildEntry)
	}
	return r, nil
}

func (r *GuildConfigRepository) Get(_ context.Context, guildID string) (guildconfig.SubmissionConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e := r.guilds[guildID]
	return guildconfig.SubmissionConfig{
		RoleID:               nonEmpty(e.RoleID),
		IntroNotifyChannelID: nonEmpty(e.IntroNotifyChannelID),
		RestrictedChannelID:  nonEmpty(e.ChannelID),
	}, nil
}

func (r *GuildConfigRepository) Set(_ context.Context, guildID string, key guildconfig.Key, value string) error {
	if _, err := guildconfig.ParseKey(string(key)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, had := r.guilds[guildID]
	cfg := guildconfig.SubmissionConfig{
		RoleID:               prev.RoleID,
		IntroNotifyChannelID: prev.IntroNotifyChannelID,
		RestrictedChannelID:  prev.ChannelID,
	}.With(key, value)

	r.guilds[guildID] = guildEntry{
		RoleID:               cfg.RoleID,
		IntroNotifyChannelID: cfg.IntroNotifyChannelID,
		ChannelID:            cfg.RestrictedChannelID,
	}
	if err := r.flush(); err != nil {
		if had {
			r.guilds[guildID] = prev
		} else {
			delete(r.guilds, guildID)
		}
		return err
	}
	return nil
}

// flush writes the map to a temp file and renames it over path. Callers hold mu.
func (r *GuildConfigRepository) flush() error {
	data, err := json.MarshalIndent(r.guilds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
