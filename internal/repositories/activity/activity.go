package activity

import (
	"context"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=activity.go -destination=mocks/mock.go
type Repository interface {
	Create(ctx context.Context, e domain.ActivityEvent) (*domain.ActivityEvent, error)

	// GetRecent returns the newest events first
	GetRecent(ctx context.Context, limit int) ([]*domain.ActivityEvent, error)
}
