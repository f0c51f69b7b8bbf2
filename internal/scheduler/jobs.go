package scheduler

import (
	"context"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/aggregator"
	"github.com/orgball2608/technews-autopilot/internal/engagement"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/telegram"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

const (
	JobAggregation = "aggregation"
	JobQueueDrain  = "queue_drain"
	JobEngagement  = "engagement"
	JobReplySweep  = "reply_sweep"
)

type Opts struct {
	fx.In
	Config     *config.Config
	Aggregator aggregator.Aggregator
	Queue      queue.Queue
	Engager    engagement.Engager
	Telegram   telegram.Client
	Logger     logger.Logger
}

func New(opts Opts) (*Scheduler, error) {
	log := opts.Logger.WithComponent("Scheduler")
	cfg := opts.Config.Schedule

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.Local
		log.Warn("Failed to load timezone, using local timezone", "timezone", cfg.Timezone, "error", err)
	}

	aggregate := Job{
		Name:  JobAggregation,
		Every: cfg.Aggregation,
		Alert: true,
		Run: func(ctx context.Context) error {
			_, err := opts.Aggregator.Aggregate(ctx)
			return err
		},
	}
	drain := Job{
		Name:  JobQueueDrain,
		Every: cfg.QueueDrain,
		Run: func(ctx context.Context) error {
			res, err := opts.Queue.Drain(ctx)
			if res.Due > 0 {
				log.Info("Queue drained", "due", res.Due, "posted", res.Posted, "failed", res.Failed)
			}
			return err
		},
	}
	engage := Job{
		Name:  JobEngagement,
		Every: cfg.Engagement,
		Run: func(ctx context.Context) error {
			_, err := opts.Engager.Cycle(ctx)
			return err
		},
	}
	replies := Job{
		Name:  JobReplySweep,
		Every: cfg.ReplySweep,
		Run: func(ctx context.Context) error {
			_, err := opts.Engager.ReplySweep(ctx)
			return err
		},
	}

	return newScheduler(
		[]Job{aggregate, drain, engage, replies},
		[]Job{aggregate, drain},
		loc,
		cfg.JobTimeoutCap,
		opts.Telegram,
		log,
	)
}
