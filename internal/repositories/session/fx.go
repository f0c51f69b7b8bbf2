package session

import "go.uber.org/fx"

var Module = fx.Module("browser_session_repository",
	fx.Provide(
		fx.Annotate(NewPgx, fx.As(new(Repository))),
	),
)
