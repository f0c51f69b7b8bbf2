package aiimpl

import (
	"github.com/orgball2608/technews-autopilot/internal/ai"
	"go.uber.org/fx"
)

var Module = fx.Module("ai",
	fx.Provide(
		fx.Annotate(New, fx.As(new(ai.Client))),
	),
)
