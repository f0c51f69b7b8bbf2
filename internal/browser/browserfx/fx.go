package browserfx

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgball2608/technews-autopilot/internal/browser"
	pwdriver "github.com/orgball2608/technews-autopilot/internal/browser/playwright"
	"github.com/orgball2608/technews-autopilot/internal/browser/telegramdriver"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/credential"
	"github.com/orgball2608/technews-autopilot/internal/repositories/session"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Config      *config.Config
	Logger      logger.Logger
	Telegram    telegram.Client
	Credentials credential.Repository
	Sessions    session.Repository
}

// NewManager starts one session per configured platform.
func NewManager(opts Opts) *browser.Manager {
	log := opts.Logger.WithComponent("BrowserManager")
	launcher := pwdriver.NewLauncher(opts.Config, opts.Logger)

	var drivers []browser.Driver
	for _, platform := range lo.Uniq(domain.ParsePlatforms(opts.Config.Schedule.Platforms)) {
		switch platform {
		case domain.PlatformTwitter:
			drivers = append(drivers, pwdriver.NewTwitter(launcher, opts.Logger))
		case domain.PlatformFacebook:
			drivers = append(drivers, pwdriver.NewFacebook(launcher, opts.Logger))
		case domain.PlatformTelegram:
			drivers = append(drivers, telegramdriver.New(opts.Telegram))
		default:
			log.Warn("Ignoring unknown platform", "platform", platform)
		}
	}

	manager := browser.NewManager(lo.Map(drivers, func(d browser.Driver, _ int) *browser.Session {
		return browser.NewSession(browser.SessionOpts{
			Driver:      d,
			Credentials: opts.Credentials,
			Sessions:    opts.Sessions,
			Logger:      opts.Logger,
			UserAgent:   opts.Config.Browser.UserAgent,
			OnLoginFailure: func(platform domain.Platform, err error) {
				opts.Telegram.SendMessageToUser(fmt.Sprintf("⚠️ %s login failed: %v", platform, err))
			},
		})
	})...)
	log.Info("Browser sessions ready", "platforms", manager.Platforms())

	opts.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return errors.Join(manager.Close(), launcher.Close())
		},
	})
	return manager
}

var Module = fx.Module("browser", fx.Provide(NewManager))
