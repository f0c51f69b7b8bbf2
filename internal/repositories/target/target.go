package target

import (
	"context"
	"errors"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("target account already exists")
	ErrNotFound      = errors.New("target account not found")
)

//go:generate go run go.uber.org/mock/mockgen -source=target.go -destination=mocks/mock.go
type Repository interface {
	Create(ctx context.Context, t domain.TargetAccount) (*domain.TargetAccount, error)

	// ListActive returns active accounts of a platform and engagement type
	ListActive(ctx context.Context, platform domain.Platform, typ domain.EngagementType) ([]*domain.TargetAccount, error)

	SetActive(ctx context.Context, id string, active bool) error
}
