package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/activity"
)

type ActivityRepo struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{}
}

var _ activity.Repository = (*ActivityRepo)(nil)

func (r *ActivityRepo) Create(_ context.Context, e domain.ActivityEvent) (*domain.ActivityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()
	r.events = append(r.events, e)
	return &e, nil
}

func (r *ActivityRepo) GetRecent(_ context.Context, limit int) ([]*domain.ActivityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.ActivityEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
