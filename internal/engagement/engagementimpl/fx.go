package engagementimpl

import (
	"github.com/orgball2608/technews-autopilot/internal/engagement"
	"go.uber.org/fx"
)

var Module = fx.Module("engagement",
	fx.Provide(
		fx.Annotate(New, fx.As(new(engagement.Engager))),
	),
)
