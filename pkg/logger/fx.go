package logger

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"go.uber.org/fx"
)

const sentryFlushTimeout = 2 * time.Second

// FromConfig builds the application logger from the App settings.
func FromConfig(cfg *config.Config) *Impl {
	return New(Opts{
		Env:       cfg.App.Env,
		Level:     cfg.App.LogLevel,
		SentryDSN: cfg.App.SentryUrl,
	})
}

func flushOnStop(lc fx.Lifecycle, cfg *config.Config) {
	if cfg.App.SentryUrl == "" {
		return
	}
	lc.Append(fx.StopHook(func(context.Context) {
		sentry.Flush(sentryFlushTimeout)
	}))
}

var Module = fx.Module("logger",
	fx.Provide(fx.Annotate(FromConfig, fx.As(new(Logger)))),
	fx.Invoke(flushOnStop),
)
