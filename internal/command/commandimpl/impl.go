package commandimpl

import (
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/browser"
	"github.com/orgball2608/technews-autopilot/internal/command"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/ratelimit"
	"github.com/orgball2608/technews-autopilot/internal/repositories/post"
	queuerepo "github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Telegram   telegram.Client
	Queue      queue.Queue
	QueueItems queuerepo.Repository
	Posts      post.Repository
	Settings   *settings.Settings
	Recorder   activity.Recorder
	Sessions   *browser.Manager `optional:"true"`
	Logger     logger.Logger
	Config     *config.Config
}

type CommandImpl struct {
	Telegram   telegram.Client
	Queue      queue.Queue
	QueueItems queuerepo.Repository
	Posts      post.Repository
	Settings   *settings.Settings
	Recorder   activity.Recorder
	Sessions   *browser.Manager
	Logger     logger.Logger
	Config     *config.Config

	limiter ratelimit.Limiter[int64]
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Telegram:   opts.Telegram,
		Queue:      opts.Queue,
		QueueItems: opts.QueueItems,
		Posts:      opts.Posts,
		Settings:   opts.Settings,
		Recorder:   opts.Recorder,
		Sessions:   opts.Sessions,
		Logger:     opts.Logger.WithComponent("Command"),
		Config:     opts.Config,
		limiter:    ratelimit.NewInMemoryLimiter[int64](1, 3*time.Second, 5),
	}
}

var _ command.Client = (*CommandImpl)(nil)
