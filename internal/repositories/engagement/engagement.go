package engagement

import (
	"context"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=engagement.go -destination=mocks/mock.go
type Repository interface {
	// Create appends an entry to the engagement log
	Create(ctx context.Context, e domain.EngagementLogEntry) (*domain.EngagementLogEntry, error)

	// GetRecent returns the newest entries first
	GetRecent(ctx context.Context, limit int) ([]*domain.EngagementLogEntry, error)

	// CountSince counts successful actions of a type since the given time
	CountSince(ctx context.Context, typ domain.EngagementType, since time.Time) (int, error)
}
