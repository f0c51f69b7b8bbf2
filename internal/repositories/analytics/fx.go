package analytics

import "go.uber.org/fx"

var Module = fx.Module("analytics_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
