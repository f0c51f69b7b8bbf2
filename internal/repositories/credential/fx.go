package credential

import "go.uber.org/fx"

var Module = fx.Module("credential_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
