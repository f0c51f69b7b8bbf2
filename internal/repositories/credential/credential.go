package credential

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var ErrNotFound = errors.New("credential not found")

//go:generate go run go.uber.org/mock/mockgen -source=credential.go -destination=mocks/mock.go
type Repository interface {
	Create(ctx context.Context, c domain.SocialCredential) (*domain.SocialCredential, error)

	// GetActive returns the active credential of a platform
	GetActive(ctx context.Context, platform domain.Platform) (*domain.SocialCredential, error)

	MarkLogin(ctx context.Context, id string, at time.Time) error
}
