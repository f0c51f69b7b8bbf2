package queueimpl

import (
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"go.uber.org/fx"
)

var Module = fx.Module("queue",
	fx.Provide(
		fx.Annotate(New, fx.As(new(queue.Queue))),
	),
)
