package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"discord_intro_bot/internal/domain/audit"
	"discord_intro_bot/internal/domain/guildconfig"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	testGuildID   = "guild-1"
	testBotID     = "bot-1"
	testMemberID  = "member-1"
	testRoleID    = "role-intro"
	testBotRoleID = "role-bot"
	testNotifyID  = "chan-notify"
	testSourceID  = "chan-intro"
)

var errFake = errors.New("fake failure")

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func strPtr(s string) *string { return &s }

// fakeDiscord is an in-memory discord.Client.
type fakeDiscord struct {
	mu sync.Mutex

	roles    []*discordgo.Role
	members  map[string]*discordgo.Member
	channels map[string]*discordgo.Channel

	rolesErr   error
	addRoleErr error
	sendErr    error

	addRoleCalls []string
	sent         []*discordgo.MessageSend
	channelCalls int
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		roles: []*discordgo.Role{
			{ID: testGuildID, Name: "@everyone", Position: 0},
			{ID: testRoleID, Name: "Introduced", Position: 1},
			{ID: testBotRoleID, Name: "Bot", Position: 5, Permissions: discordgo.PermissionManageRoles},
		},
		members: map[string]*discordgo.Member{
			testMemberID: {User: &discordgo.User{ID: testMemberID}, Roles: []string{}},
			testBotID:    {User: &discordgo.User{ID: testBotID}, Roles: []string{testBotRoleID}},
		},
		channels: map[string]*discordgo.Channel{
			testNotifyID: {ID: testNotifyID, Type: discordgo.ChannelTypeGuildText},
		},
	}
}

func (f *fakeDiscord) BotUserID() string { return testBotID }

func (f *fakeDiscord) GuildRoles(_ context.Context, _ string) ([]*discordgo.Role, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles, nil
}

func (f *fakeDiscord) GuildMember(_ context.Context, _ string, userID string) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, errFake
	}
	cp := *m
	cp.Roles = append([]string(nil), m.Roles...)
	return &cp, nil
}

func (f *fakeDiscord) AddMemberRole(_ context.Context, _ string, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addRoleCalls = append(f.addRoleCalls, userID+":"+roleID)
	if f.addRoleErr != nil {
		return f.addRoleErr
	}
	m := f.members[userID]
	m.Roles = append(m.Roles, roleID)
	return nil
}

func (f *fakeDiscord) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelCalls++
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errFake
	}
	return ch, nil
}

func (f *fakeDiscord) SendMessage(_ context.Context, _ string, msg *discordgo.MessageSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeConfigs is an in-memory guildconfig.Repository.
type fakeConfigs struct {
	cfg guildconfig.SubmissionConfig
	err error

	setCalls []string
}

func (f *fakeConfigs) Get(_ context.Context, _ string) (guildconfig.SubmissionConfig, error) {
	return f.cfg, f.err
}

func (f *fakeConfigs) Set(_ context.Context, _ string, key guildconfig.Key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.setCalls = append(f.setCalls, string(key)+"="+value)
	f.cfg = f.cfg.With(key, value)
	return nil
}

// fakeAudits collects records.
type fakeAudits struct {
	records []*audit.Record
	err     error
}

func (f *fakeAudits) Create(_ context.Context, r *audit.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func (f *fakeAudits) ListBySubmitter(_ context.Context, _, _ string, _ int) ([]*audit.Record, error) {
	return f.records, nil
}

func (f *fakeAudits) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// fakeMirror records mirrored texts.
type fakeMirror struct {
	texts []string
	err   error
}

func (f *fakeMirror) Name() string { return "fake" }

func (f *fakeMirror) Mirror(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}
