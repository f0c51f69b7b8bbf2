package publisherimpl

import (
	"github.com/orgball2608/technews-autopilot/internal/publisher"
	"go.uber.org/fx"
)

var Module = fx.Module("publisher",
	fx.Provide(
		fx.Annotate(New, fx.As(new(publisher.Publisher))),
	),
)
