package activityimpl

import (
	"github.com/orgball2608/technews-autopilot/internal/activity"
	"go.uber.org/fx"
)

var Module = fx.Module("activity",
	fx.Provide(
		fx.Annotate(New, fx.As(new(activity.Recorder))),
	),
)
