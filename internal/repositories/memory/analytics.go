package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/analytics"
)

type AnalyticsRepo struct {
	mu   sync.Mutex
	rows map[string]domain.Analytics
}

func NewAnalyticsRepo() *AnalyticsRepo {
	return &AnalyticsRepo{rows: make(map[string]domain.Analytics)}
}

var _ analytics.Repository = (*AnalyticsRepo)(nil)

func (r *AnalyticsRepo) Create(_ context.Context, a domain.Analytics) (*domain.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	r.rows[a.ID] = a
	return &a, nil
}

func (r *AnalyticsRepo) Get(_ context.Context, postID string, platform domain.Platform) (*domain.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *domain.Analytics
	for _, a := range r.rows {
		if a.PostID != postID || a.Platform != platform {
			continue
		}
		if found == nil || a.CreatedAt.After(found.CreatedAt) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, analytics.ErrNotFound
	}
	return found, nil
}

func (r *AnalyticsRepo) Update(_ context.Context, id string, m domain.EngagementMetrics, rate float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return analytics.ErrNotFound
	}
	a.EngagementMetrics = m
	a.EngagementRate = rate
	r.rows[id] = a
	return nil
}

func (r *AnalyticsRepo) ListSince(_ context.Context, since time.Time) ([]*domain.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Analytics
	for _, a := range r.rows {
		if !a.CreatedAt.Before(since) {
			a := a
			out = append(out, &a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
