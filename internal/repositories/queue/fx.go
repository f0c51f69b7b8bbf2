package queue

import "go.uber.org/fx"

var Module = fx.Module("queue_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
