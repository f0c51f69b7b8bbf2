package configuration

import "go.uber.org/fx"

var Module = fx.Module("configuration_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
