package activity

import "go.uber.org/fx"

var Module = fx.Module("activity_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
