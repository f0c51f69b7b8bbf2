package target

import "go.uber.org/fx"

var Module = fx.Module("target_account_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
