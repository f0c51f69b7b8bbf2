package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the Bot API limit for one text message.
const MaxMessageLength = 4096

type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()

	SendMessage(chatID int64, text string) (int, error)

	// SendMessageToChannel posts to the configured public channel
	SendMessageToChannel(text string) (int, error)

	// SendMessageToUser alerts the configured operator, errors are only logged
	SendMessageToUser(text string)

	// Enabled is false when no bot token is configured
	Enabled() bool
}
