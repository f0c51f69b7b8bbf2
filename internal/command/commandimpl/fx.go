package commandimpl

import (
	"context"
	"errors"

	"github.com/orgball2608/technews-autopilot/internal/command"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

func run(lc fx.Lifecycle, cmd command.Client, log logger.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := cmd.HandleCommand(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("Command handler stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

var Module = fx.Module("command",
	fx.Provide(
		fx.Annotate(New, fx.As(new(command.Client))),
	),
	fx.Invoke(run),
)
