package memory

import (
	"github.com/orgball2608/technews-autopilot/internal/repositories/activity"
	"github.com/orgball2608/technews-autopilot/internal/repositories/analytics"
	"github.com/orgball2608/technews-autopilot/internal/repositories/configuration"
	"github.com/orgball2608/technews-autopilot/internal/repositories/credential"
	"github.com/orgball2608/technews-autopilot/internal/repositories/engagement"
	"github.com/orgball2608/technews-autopilot/internal/repositories/post"
	"github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/repositories/session"
	"github.com/orgball2608/technews-autopilot/internal/repositories/target"
	"go.uber.org/fx"
)

var Module = fx.Module("memory_repositories",
	fx.Provide(
		fx.Annotate(NewPostRepo, fx.As(new(post.Repository))),
		fx.Annotate(NewQueueRepo, fx.As(new(queue.Repository))),
		fx.Annotate(NewAnalyticsRepo, fx.As(new(analytics.Repository))),
		fx.Annotate(NewEngagementRepo, fx.As(new(engagement.Repository))),
		fx.Annotate(NewActivityRepo, fx.As(new(activity.Repository))),
		fx.Annotate(NewConfigurationRepo, fx.As(new(configuration.Repository))),
		fx.Annotate(NewTargetRepo, fx.As(new(target.Repository))),
		fx.Annotate(NewCredentialRepo, fx.As(new(credential.Repository))),
		fx.Annotate(NewSessionRepo, fx.As(new(session.Repository))),
	),
)
