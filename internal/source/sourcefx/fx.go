package sourcefx

import (
	"context"
	"errors"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/source"
	"github.com/orgball2608/technews-autopilot/internal/source/hackernews"
	"github.com/orgball2608/technews-autopilot/internal/source/newsapi"
	"github.com/orgball2608/technews-autopilot/internal/source/rss"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Recorder  activity.Recorder
	Logger    logger.Logger
}

// NewSources builds every configured content source in a fixed order.
func NewSources(opts Opts) []source.Source {
	news := newsapi.New(opts.Config, opts.Logger)
	hn := hackernews.New(opts.Config, opts.Logger)

	opts.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return errors.Join(news.Close(), hn.Close())
		},
	})

	return []source.Source{
		rss.New(opts.Config, opts.Recorder, opts.Logger),
		news,
		hn,
	}
}

var Module = fx.Module("sources", fx.Provide(NewSources))
