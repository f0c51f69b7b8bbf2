package configuration

import (
	"context"
	"errors"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

var ErrNotFound = errors.New("configuration key not found")

//go:generate go run go.uber.org/mock/mockgen -source=configuration.go -destination=mocks/mock.go
type Repository interface {
	Get(ctx context.Context, key string) (*domain.Configuration, error)

	// Set inserts or replaces the value stored under c.Key
	Set(ctx context.Context, c domain.Configuration) (*domain.Configuration, error)

	GetAll(ctx context.Context) ([]*domain.Configuration, error)
}
