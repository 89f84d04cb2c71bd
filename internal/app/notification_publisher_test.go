package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
	"time"

	"discord_intro_bot/internal/domain/intro"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() Notification {
	return Notification{
		Submission: intro.Submission{
			SubmitterID:          testMemberID,
			SubmitterDisplayName: "Aki",
			SubmitterAvatarURL:   "https://cdn.example/avatar.png",
			GuildID:              testGuildID,
		},
		FormattedText: "[名前] Aki\n[VRCの名前] Aki_VR",
	}
}

func TestPublishEmbed(t *testing.T) {
	dc := newFakeDiscord()
	p := NewNotificationPublisher(dc, NotifyEmbed, nil, testLogger())
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	res, err := p.Publish(context.Background(), testNotifyID, testNotification())
	require.NoError(t, err)
	assert.True(t, res.Sent)

	require.Len(t, dc.sent, 1)
	require.Len(t, dc.sent[0].Embeds, 1)
	embed := dc.sent[0].Embeds[0]
	assert.Equal(t, notifyEmbedTitle, embed.Title)
	assert.Equal(t, "[名前] Aki\n[VRCの名前] Aki_VR", embed.Description)
	assert.Equal(t, "Aki", embed.Author.Name)
	assert.Equal(t, "https://cdn.example/avatar.png", embed.Author.IconURL)
	assert.Equal(t, "ユーザーID: "+testMemberID, embed.Footer.Text)
	assert.Equal(t, "2026-10-18T12:00:00Z", embed.Timestamp)
}

func TestPublishPlainText(t *testing.T) {
	dc := newFakeDiscord()
	p := NewNotificationPublisher(dc, NotifyPlainText, nil, testLogger())

	_, err := p.Publish(context.Background(), testNotifyID, testNotification())
	require.NoError(t, err)

	require.Len(t, dc.sent, 1)
	assert.Empty(t, dc.sent[0].Embeds)
	assert.Contains(t, dc.sent[0].Content, "<@"+testMemberID+">")
	assert.Contains(t, dc.sent[0].Content, "[VRCの名前] Aki_VR")
	require.NotNil(t, dc.sent[0].AllowedMentions)
	assert.Empty(t, dc.sent[0].AllowedMentions.Parse)
}

func TestPublishLongPlainTextFallsBackToEmbed(t *testing.T) {
	dc := newFakeDiscord()
	p := NewNotificationPublisher(dc, NotifyPlainText, nil, testLogger())
	n := testNotification()
	n.FormattedText = "[一言] " + strings.Repeat("あ", 1990)

	res, err := p.Publish(context.Background(), testNotifyID, n)
	require.NoError(t, err)
	assert.True(t, res.Sent)

	require.Len(t, dc.sent, 1)
	assert.Empty(t, dc.sent[0].Content)
	require.Len(t, dc.sent[0].Embeds, 1)
	assert.Equal(t, n.FormattedText, dc.sent[0].Embeds[0].Description)
}

func TestPublishTruncatesOversizedEmbed(t *testing.T) {
	dc := newFakeDiscord()
	p := NewNotificationPublisher(dc, NotifyEmbed, nil, testLogger())
	n := testNotification()
	n.FormattedText = strings.Repeat("あ", 5000)

	_, err := p.Publish(context.Background(), testNotifyID, n)
	require.NoError(t, err)

	desc := dc.sent[0].Embeds[0].Description
	assert.Equal(t, maxDescriptionLength, utf8.RuneCountInString(desc))
	assert.True(t, strings.HasSuffix(desc, "…"))
}

func TestPublishFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(dc *fakeDiscord)
		channelID string
		reason    PublishFailure
	}{
		{name: "unknown channel", channelID: "missing", reason: ChannelNotFound},
		{
			name: "voice channel",
			setup: func(dc *fakeDiscord) {
				dc.channels["voice"] = &discordgo.Channel{ID: "voice", Type: discordgo.ChannelTypeGuildVoice}
			},
			channelID: "voice",
			reason:    ChannelNotText,
		},
		{
			name:      "send fails",
			setup:     func(dc *fakeDiscord) { dc.sendErr = errFake },
			channelID: testNotifyID,
			reason:    SendFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := newFakeDiscord()
			if tt.setup != nil {
				tt.setup(dc)
			}
			p := NewNotificationPublisher(dc, NotifyEmbed, nil, testLogger())

			res, err := p.Publish(context.Background(), tt.channelID, testNotification())
			require.Error(t, err)
			assert.False(t, res.Sent)

			var pubErr *PublishError
			require.True(t, errors.As(err, &pubErr))
			assert.Equal(t, tt.reason, pubErr.Reason)
		})
	}
}

func TestPublishMirrorsIndependently(t *testing.T) {
	dc := newFakeDiscord()
	dc.sendErr = errFake
	ok := &fakeMirror{}
	broken := &fakeMirror{err: errFake}
	p := NewNotificationPublisher(dc, NotifyEmbed, []Mirror{broken, ok}, testLogger())

	res, err := p.Publish(context.Background(), testNotifyID, testNotification())
	require.Error(t, err)
	assert.False(t, res.Sent)
	assert.Equal(t, 1, res.Mirrored)
	assert.Equal(t, []string{testNotification().FormattedText}, ok.texts)
}
