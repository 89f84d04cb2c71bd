package telegram

import (
	"context"
	"fmt"

	domainTelegram "discord_intro_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// Mirror forwards published introductions to a Telegram chat.
type Mirror struct {
	client domainTelegram.Client
	chatID int64
}

func NewMirror(client domainTelegram.Client, chatID int64) *Mirror {
	return &Mirror{client: client, chatID: chatID}
}

func (m *Mirror) Name() string {
	return fmt.Sprintf("telegram:%d", m.chatID)
}

// Mirror sends text to the chat. telebot has no context support, so ctx is
// only checked before sending.
func (m *Mirror) Mirror(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.client.SendMessage(m.chatID, "📝 新しい自己紹介\n"+text, &telebot.SendOptions{
		DisableWebPagePreview: true,
	})
}
