package queue

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var (
	ErrNotRequeueable = errors.New("only failed queue items can be requeued")
	ErrRequeueLimit   = errors.New("requeue limit reached")
)

// DrainResult summarises one drain pass.
type DrainResult struct {
	Due     int
	Posted  int
	Failed  int
	Skipped bool // another drain was running
	Stopped bool // emergency stop was active
}

type Queue interface {
	// Schedule creates one scheduled item per platform of post, due after delay.
	Schedule(ctx context.Context, post *domain.Post, delay time.Duration) ([]*domain.QueueItem, error)

	// Drain publishes every due item. Calls overlapping a running drain return at once.
	Drain(ctx context.Context) (DrainResult, error)

	// Requeue schedules a fresh copy of a failed item.
	Requeue(ctx context.Context, itemID string) (*domain.QueueItem, error)
}
