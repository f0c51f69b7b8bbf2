// Package telegramdriver delivers channel posts through the Bot API.
package telegramdriver

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/orgball2608/technews-autopilot/internal/browser"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
)

// Driver needs no login: the bot token is the session.
type Driver struct {
	client telegram.Client
}

var _ browser.Driver = (*Driver)(nil)

func New(client telegram.Client) *Driver {
	return &Driver{client: client}
}

func (d *Driver) Platform() domain.Platform {
	return domain.PlatformTelegram
}

func (d *Driver) RestoreSession(context.Context, json.RawMessage) (bool, error) {
	return true, nil
}

func (d *Driver) Login(context.Context, browser.Credentials) error {
	return nil
}

func (d *Driver) ExportSession(context.Context) (json.RawMessage, error) {
	return nil, nil
}

func (d *Driver) Publish(ctx context.Context, msg browser.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := d.client.SendMessageToChannel(msg.Text)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(id), nil
}

func (d *Driver) Engage(context.Context, domain.EngagementType, string, string) error {
	return errors.Wrap(errors.ErrUnsupported, "telegram engagement")
}

func (d *Driver) Close() error {
	return nil
}
