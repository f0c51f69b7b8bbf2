package engagement

import "context"

// CycleResult counts the actions attempted in one engagement cycle.
type CycleResult struct {
	Attempted int
	Succeeded int
	// Skipped is set when the emergency stop or the auto engagement switch blocked the cycle.
	Skipped bool
}

//go:generate go run go.uber.org/mock/mockgen -source=engagement.go -destination=mocks/mock.go
type Engager interface {
	// Cycle likes, retweets and comments on the posts of active target accounts.
	Cycle(ctx context.Context) (CycleResult, error)

	// ReplySweep answers recent inbound comments that have no reply yet and
	// returns how many replies were sent.
	ReplySweep(ctx context.Context) (int, error)
}
