package post

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("post already exists")
	ErrNotFound      = errors.New("post not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// Create stores a new post and returns it with ID and timestamps set
	Create(ctx context.Context, post domain.Post) (*domain.Post, error)

	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// GetRecent returns the newest posts first
	GetRecent(ctx context.Context, limit int) ([]*domain.Post, error)

	// Update applies the non-nil fields of upd
	Update(ctx context.Context, id string, upd domain.PostUpdate) error

	// CountSince counts posts created at or after since
	CountSince(ctx context.Context, since time.Time) (int, error)
}
