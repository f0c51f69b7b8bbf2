package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/target"
)

type TargetRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.TargetAccount
}

func NewTargetRepo() *TargetRepo {
	return &TargetRepo{accounts: make(map[string]domain.TargetAccount)}
}

var _ target.Repository = (*TargetRepo)(nil)

func (r *TargetRepo) Create(_ context.Context, t domain.TargetAccount) (*domain.TargetAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Platform == t.Platform && existing.Username == t.Username && existing.Type == t.Type {
			return nil, target.ErrAlreadyExists
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Niche == "" {
		t.Niche = domain.DefaultNiche
	}
	t.CreatedAt = time.Now().UTC()
	r.accounts[t.ID] = t
	return &t, nil
}

func (r *TargetRepo) ListActive(_ context.Context, platform domain.Platform, typ domain.EngagementType) ([]*domain.TargetAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.TargetAccount
	for _, t := range r.accounts {
		if t.Platform == platform && t.Type == typ && t.IsActive {
			t := t
			out = append(out, &t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *TargetRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.accounts[id]
	if !ok {
		return target.ErrNotFound
	}
	t.IsActive = active
	r.accounts[id] = t
	return nil
}
