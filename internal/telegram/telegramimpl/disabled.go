package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

// Disabled stands in for the bot when no token is configured.
type Disabled struct {
	logger logger.Logger
}

var _ telegram.Client = (*Disabled)(nil)

func (d *Disabled) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (d *Disabled) StopReceivingUpdates() {}

func (d *Disabled) SendMessage(int64, string) (int, error) {
	return 0, errors.Wrap(errors.ErrUnsupported, "telegram bot disabled")
}

func (d *Disabled) SendMessageToChannel(string) (int, error) {
	return 0, errors.Wrap(errors.ErrUnsupported, "telegram bot disabled")
}

func (d *Disabled) SendMessageToUser(text string) {
	d.logger.Debug("Dropping operator alert, telegram disabled", "text", text)
}

func (d *Disabled) Enabled() bool { return false }
