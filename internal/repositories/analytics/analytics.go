package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var ErrNotFound = errors.New("analytics row not found")

//go:generate go run go.uber.org/mock/mockgen -source=analytics.go -destination=mocks/mock.go
type Repository interface {
	Create(ctx context.Context, a domain.Analytics) (*domain.Analytics, error)

	// Get returns the row for the (post, platform) pair
	Get(ctx context.Context, postID string, platform domain.Platform) (*domain.Analytics, error)

	Update(ctx context.Context, id string, m domain.EngagementMetrics, rate float64) error

	// ListSince returns rows created at or after since, newest first
	ListSince(ctx context.Context, since time.Time) ([]*domain.Analytics, error)
}
