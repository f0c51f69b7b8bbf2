package telegramimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/formatter"
)

// SendMessageToChannel sends a text message to the configured channel
func (tg *TelegramImpl) SendMessageToChannel(text string) (int, error) {
	if tg.Config.Telegram.Channel == "" {
		return 0, fmt.Errorf("TELEGRAM_CHANNEL is not configured")
	}

	channelName := "@" + tg.Config.Telegram.Channel
	msg := tgbotapi.NewMessageToChannel(channelName, formatter.Truncate(text, telegram.MaxMessageLength))
	msg.DisableWebPagePreview = false

	sent, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message to channel", "channel", channelName, "error", err)
		return 0, fmt.Errorf("failed to send message to channel: %w", err)
	}

	tg.Logger.Info("Message sent to channel", "channel", channelName, "messageID", sent.MessageID)
	return sent.MessageID, nil
}

// SendMessageToUser sends a text message to the configured user
func (tg *TelegramImpl) SendMessageToUser(message string) {
	if tg.Config.Telegram.User == 0 {
		return
	}

	msg := tgbotapi.NewMessage(tg.Config.Telegram.User, formatter.Truncate(message, telegram.MaxMessageLength))
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message to user", "userID", tg.Config.Telegram.User, "error", err)
		return
	}

	tg.Logger.Info("Message sent to user", "userID", tg.Config.Telegram.User)
}

// SendMessage sends a message to a specific chat ID
func (tg *TelegramImpl) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, formatter.Truncate(text, telegram.MaxMessageLength))
	sentMsg, err := tg.TgBot.Send(msg)
	if err != nil {
		tg.Logger.Error("Error sending message", "chatID", chatID, "error", err)
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	tg.Logger.Debug("Message sent", "chatID", chatID, "messageID", sentMsg.MessageID)
	return sentMsg.MessageID, nil
}

func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}
