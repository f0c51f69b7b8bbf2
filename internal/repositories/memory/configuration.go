package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/configuration"
)

type ConfigurationRepo struct {
	mu     sync.Mutex
	values map[string]domain.Configuration
}

func NewConfigurationRepo() *ConfigurationRepo {
	return &ConfigurationRepo{values: make(map[string]domain.Configuration)}
}

var _ configuration.Repository = (*ConfigurationRepo)(nil)

func (r *ConfigurationRepo) Get(_ context.Context, key string) (*domain.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.values[key]
	if !ok {
		return nil, configuration.ErrNotFound
	}
	return &c, nil
}

func (r *ConfigurationRepo) Set(_ context.Context, c domain.Configuration) (*domain.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.values[c.Key]; ok {
		c.ID = prev.ID
	} else if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.UpdatedAt = time.Now().UTC()
	r.values[c.Key] = c
	return &c, nil
}

func (r *ConfigurationRepo) GetAll(_ context.Context) ([]*domain.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Configuration, 0, len(r.values))
	for _, c := range r.values {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
