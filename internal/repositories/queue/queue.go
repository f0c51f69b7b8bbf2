package queue

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var (
	ErrNotFound = errors.New("queue item not found")
	// ErrStaleStatus is returned when the item is no longer in the expected status.
	ErrStaleStatus = errors.New("queue item status changed concurrently")
)

//go:generate go run go.uber.org/mock/mockgen -source=queue.go -destination=mocks/mock.go
type Repository interface {
	Create(ctx context.Context, item domain.QueueItem) (*domain.QueueItem, error)

	GetByID(ctx context.Context, id string) (*domain.QueueItem, error)

	// ListDue returns scheduled items whose time has come, oldest first
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.QueueItem, error)

	ListByPost(ctx context.Context, postID string) ([]*domain.QueueItem, error)

	// ListRecent returns the newest items first, optionally filtered by status
	ListRecent(ctx context.Context, status domain.QueueStatus, limit int) ([]*domain.QueueItem, error)

	// Transition moves an item from one status to another atomically.
	// Returns ErrStaleStatus when the item is not in status from.
	Transition(ctx context.Context, id string, from, to domain.QueueStatus, errMsg string) error

	CountByStatus(ctx context.Context) (map[domain.QueueStatus]int, error)
}
