package activityimpl

import (
	"context"
	"errors"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	activityrepo "github.com/orgball2608/technews-autopilot/internal/repositories/activity"
	analyticsrepo "github.com/orgball2608/technews-autopilot/internal/repositories/analytics"
	engagementrepo "github.com/orgball2608/technews-autopilot/internal/repositories/engagement"
	postrepo "github.com/orgball2608/technews-autopilot/internal/repositories/post"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	Activities  activityrepo.Repository
	Engagements engagementrepo.Repository
	Analytics   analyticsrepo.Repository
	Posts       postrepo.Repository
	Broadcaster realtime.Broadcaster
	Logger      logger.Logger
}

type Impl struct {
	activities  activityrepo.Repository
	engagements engagementrepo.Repository
	analytics   analyticsrepo.Repository
	posts       postrepo.Repository
	broadcaster realtime.Broadcaster
	logger      logger.Logger
}

var _ activity.Recorder = (*Impl)(nil)

func New(opts Opts) *Impl {
	b := opts.Broadcaster
	if b == nil {
		b = realtime.Nop{}
	}
	return &Impl{
		activities:  opts.Activities,
		engagements: opts.Engagements,
		analytics:   opts.Analytics,
		posts:       opts.Posts,
		broadcaster: b,
		logger:      opts.Logger.WithComponent("ActivityRecorder"),
	}
}

func (i *Impl) Record(ctx context.Context, event domain.ActivityEvent) {
	saved, err := i.activities.Create(ctx, event)
	if err != nil {
		i.logger.Error("Failed to store activity", "type", event.Type, "title", event.Title, "error", err)
		return
	}
	i.broadcaster.Broadcast(activity.EventActivity, saved)
}

func (i *Impl) LogEngagement(ctx context.Context, entry domain.EngagementLogEntry) {
	saved, err := i.engagements.Create(ctx, entry)
	if err != nil {
		i.logger.Error("Failed to store engagement entry",
			"type", entry.Type, "platform", entry.Platform, "target", entry.TargetAccount, "error", err)
		return
	}
	i.broadcaster.Broadcast(activity.EventEngagement, saved)
}

func (i *Impl) RecordAnalytics(ctx context.Context, postID string, platform domain.Platform, m domain.EngagementMetrics) {
	_, err := i.analytics.Create(ctx, domain.Analytics{
		PostID:            postID,
		Platform:          platform,
		EngagementMetrics: m,
		EngagementRate:    activity.EngagementRate(m),
	})
	if err != nil {
		i.logger.Error("Failed to store analytics", "post_id", postID, "platform", platform, "error", err)
	}
}

func (i *Impl) UpdateAnalytics(ctx context.Context, postID string, platform domain.Platform, m domain.EngagementMetrics) error {
	existing, err := i.analytics.Get(ctx, postID, platform)
	if errors.Is(err, analyticsrepo.ErrNotFound) {
		i.RecordAnalytics(ctx, postID, platform, m)
		return nil
	}
	if err != nil {
		return err
	}
	return i.analytics.Update(ctx, existing.ID, m, activity.EngagementRate(m))
}

func (i *Impl) Recent(ctx context.Context, limit int) ([]*domain.ActivityEvent, error) {
	return i.activities.GetRecent(ctx, limit)
}
