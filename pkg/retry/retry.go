package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
)

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	Attempts uint64
	Initial  time.Duration
	Max      time.Duration
	Factor   float64
}

// Navigation suits page loads against social platforms.
var Navigation = Policy{
	Attempts: 3,
	Initial:  500 * time.Millisecond,
	Max:      5 * time.Second,
	Factor:   1.5,
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.Initial),
		backoff.WithMaxInterval(p.Max),
		backoff.WithMultiplier(p.Factor),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(bo, p.Attempts), ctx)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls op until it returns a value, the policy is exhausted or ctx ends.
// The last error is returned as is.
func Do[T any](ctx context.Context, log logger.Logger, name string, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(
		func() (T, error) {
			attempt++
			return op(ctx)
		},
		p.backOff(ctx),
		func(err error, next time.Duration) {
			log.Warn("Retrying after failure",
				"operation", name,
				"attempt", attempt,
				"error", err,
				"next_attempt_in", next.Round(time.Millisecond).String(),
			)
		},
	)
}
