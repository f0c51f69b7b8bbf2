package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/engagement"
)

type EngagementRepo struct {
	mu      sync.Mutex
	entries []domain.EngagementLogEntry
}

func NewEngagementRepo() *EngagementRepo {
	return &EngagementRepo{}
}

var _ engagement.Repository = (*EngagementRepo)(nil)

func (r *EngagementRepo) Create(_ context.Context, e domain.EngagementLogEntry) (*domain.EngagementLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, e)
	return &e, nil
}

func (r *EngagementRepo) GetRecent(_ context.Context, limit int) ([]*domain.EngagementLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.EngagementLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *EngagementRepo) CountSince(_ context.Context, typ domain.EngagementType, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.Type == typ && e.Success && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
