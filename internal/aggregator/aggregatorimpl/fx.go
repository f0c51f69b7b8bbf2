package aggregatorimpl

import (
	"github.com/orgball2608/technews-autopilot/internal/aggregator"
	"go.uber.org/fx"
)

var Module = fx.Module("aggregator",
	fx.Provide(
		fx.Annotate(New, fx.As(new(aggregator.Aggregator))),
	),
)
