package telegram

import "gopkg.in/telebot.v3"

// Client sends text to a Telegram chat. The intro mirror depends on this
// rather than on *telebot.Bot.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
