package app

import (
	"context"
	"fmt"

	"github.com/orgball2608/technews-autopilot/internal/activity/activityimpl"
	"github.com/orgball2608/technews-autopilot/internal/aggregator/aggregatorimpl"
	"github.com/orgball2608/technews-autopilot/internal/ai/aiimpl"
	"github.com/orgball2608/technews-autopilot/internal/browser"
	"github.com/orgball2608/technews-autopilot/internal/browser/browserfx"
	"github.com/orgball2608/technews-autopilot/internal/command/commandimpl"
	"github.com/orgball2608/technews-autopilot/internal/engagement/engagementimpl"
	"github.com/orgball2608/technews-autopilot/internal/migrations"
	"github.com/orgball2608/technews-autopilot/internal/publisher/publisherimpl"
	"github.com/orgball2608/technews-autopilot/internal/queue/queueimpl"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	repositories "github.com/orgball2608/technews-autopilot/internal/repositories/fx"
	"github.com/orgball2608/technews-autopilot/internal/scheduler"
	"github.com/orgball2608/technews-autopilot/internal/server"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/internal/source/sourcefx"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/internal/telegram/telegramimpl"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

// Module wires the whole pipeline. The storage back end is picked from cfg.
func Module(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		logger.Module,
		storage(cfg),
		settings.Module,
		realtime.Module,
		activityimpl.Module,
		aiimpl.Module,
		telegramimpl.Module,
		browserfx.Module,
		publisherimpl.Module,
		queueimpl.Module,
		sourcefx.Module,
		aggregatorimpl.Module,
		engagementimpl.Module,
		scheduler.Module,
		server.Module,
		commandimpl.Module,
		fx.Invoke(run),
	)
}

func storage(cfg *config.Config) fx.Option {
	if cfg.UseMemoryStorage() {
		return repositories.MemoryModule
	}
	return fx.Options(
		fx.Invoke(func(c *config.Config, log logger.Logger) error {
			if err := migrations.Up(context.Background(), c.GetDSN()); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			log.Info("Database migrations applied")
			return nil
		}),
		repositories.Module,
	)
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, tgClient telegram.Client, sessions *browser.Manager) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("TechNews Autopilot started",
				"env", cfg.App.Env,
				"storage", cfg.Storage.Driver,
				"platforms", sessions.Platforms(),
				"auto_schedule", cfg.Schedule.AutoSchedule)
			tgClient.SendMessageToUser(fmt.Sprintf("🚀 TechNews Autopilot started, publishing to %v", sessions.Platforms()))
			return nil
		},
	})
}
