package engagement

import "go.uber.org/fx"

var Module = fx.Module("engagement_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
