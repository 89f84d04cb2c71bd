package app

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"discord_intro_bot/internal/domain/discord"
	"discord_intro_bot/internal/domain/intro"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// NotifyFormat selects how accepted submissions are republished.
type NotifyFormat string

const (
	NotifyPlainText NotifyFormat = "plain"
	NotifyEmbed     NotifyFormat = "embed"
)

const (
	notifyEmbedTitle = "新しい自己紹介"
	notifyEmbedColor = 0x57F287

	// Discord limits, in characters.
	maxContentLength     = 2000
	maxDescriptionLength = 4096
)

// Mirror is a secondary destination that receives the formatted text of every
// published submission, e.g. a moderators' Telegram chat.
type Mirror interface {
	Name() string
	Mirror(ctx context.Context, text string) error
}

// Notification is what gets republished for one accepted submission.
type Notification struct {
	Submission    intro.Submission
	FormattedText string
}

// PublishResult reports delivery per recipient.
type PublishResult struct {
	Sent     bool
	Mirrored int
}

// NotificationPublisher forwards accepted submissions to the notify channel.
type NotificationPublisher struct {
	client  discord.Client
	format  NotifyFormat
	mirrors []Mirror
	logger  *logrus.Entry
	now     func() time.Time
}

func NewNotificationPublisher(client discord.Client, format NotifyFormat, mirrors []Mirror, logger *logrus.Entry) *NotificationPublisher {
	return &NotificationPublisher{
		client:  client,
		format:  format,
		mirrors: mirrors,
		logger:  logger.WithField("component", "notification_publisher"),
		now:     time.Now,
	}
}

// Publish sends n to channelID and then to every mirror. A failed mirror is
// logged and skipped; only the channel delivery determines the returned error.
func (p *NotificationPublisher) Publish(ctx context.Context, channelID string, n Notification) (PublishResult, error) {
	var res PublishResult
	err := p.sendToChannel(ctx, channelID, n)
	res.Sent = err == nil

	for _, m := range p.mirrors {
		if mErr := m.Mirror(ctx, n.FormattedText); mErr != nil {
			p.logger.WithError(mErr).WithField("mirror", m.Name()).Warn("Mirror delivery failed")
			continue
		}
		res.Mirrored++
	}
	return res, err
}

func (p *NotificationPublisher) sendToChannel(ctx context.Context, channelID string, n Notification) error {
	ch, err := p.client.Channel(ctx, channelID)
	if err != nil {
		return &PublishError{Reason: ChannelNotFound, ChannelID: channelID, Err: err}
	}
	if !isTextChannel(ch) {
		return &PublishError{Reason: ChannelNotText, ChannelID: channelID, Err: fmt.Errorf("channel type %d", ch.Type)}
	}

	if err := p.client.SendMessage(ctx, channelID, p.buildMessage(n)); err != nil {
		return &PublishError{Reason: SendFailed, ChannelID: channelID, Err: err}
	}

	p.logger.WithFields(logrus.Fields{
		"channel_id":   channelID,
		"submitter_id": n.Submission.SubmitterID,
		"format":       p.format,
	}).Info("Introduction published")
	return nil
}

func (p *NotificationPublisher) buildMessage(n Notification) *discordgo.MessageSend {
	sub := n.Submission
	if p.format != NotifyEmbed {
		content := fmt.Sprintf("📝 <@%s> (%s) さんの自己紹介\n%s", sub.SubmitterID, sub.SubmitterDisplayName, n.FormattedText)
		// Content over the limit falls through to the embed.
		if utf8.RuneCountInString(content) <= maxContentLength {
			return &discordgo.MessageSend{
				Content: content,
				// The mention is for display only.
				AllowedMentions: &discordgo.MessageAllowedMentions{},
			}
		}
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       notifyEmbedTitle,
			Description: truncate(n.FormattedText, maxDescriptionLength),
			Color:       notifyEmbedColor,
			Author: &discordgo.MessageEmbedAuthor{
				Name:    sub.SubmitterDisplayName,
				IconURL: sub.SubmitterAvatarURL,
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "ユーザーID: " + sub.SubmitterID,
			},
			Timestamp: p.now().Format(time.RFC3339),
		}},
	}
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}

func isTextChannel(ch *discordgo.Channel) bool {
	switch ch.Type {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}
