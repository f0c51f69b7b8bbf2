package session

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var ErrNotFound = errors.New("browser session not found")

//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=mocks/mock.go
type Repository interface {
	// GetActive returns the newest active session of a platform
	GetActive(ctx context.Context, platform domain.Platform) (*domain.BrowserSession, error)

	// Save deactivates older sessions of the platform and stores s as the active one
	Save(ctx context.Context, s domain.BrowserSession) (*domain.BrowserSession, error)

	Touch(ctx context.Context, id string, at time.Time) error

	Deactivate(ctx context.Context, platform domain.Platform) error
}
