package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/queue"
)

type QueueRepo struct {
	mu    sync.Mutex
	items map[string]domain.QueueItem
}

func NewQueueRepo() *QueueRepo {
	return &QueueRepo{items: make(map[string]domain.QueueItem)}
}

var _ queue.Repository = (*QueueRepo)(nil)

func (r *QueueRepo) Create(_ context.Context, item domain.QueueItem) (*domain.QueueItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = domain.QueueStatusScheduled
	}
	item.CreatedAt = time.Now().UTC()
	r.items[item.ID] = item
	return &item, nil
}

func (r *QueueRepo) GetByID(_ context.Context, id string) (*domain.QueueItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, queue.ErrNotFound
	}
	return &item, nil
}

func (r *QueueRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.QueueItem, error) {
	out := r.filter(func(i domain.QueueItem) bool {
		return i.Status == domain.QueueStatusScheduled && !i.ScheduledFor.After(now)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledFor.Before(out[j].ScheduledFor) })
	return truncate(out, limit), nil
}

func (r *QueueRepo) ListByPost(_ context.Context, postID string) ([]*domain.QueueItem, error) {
	out := r.filter(func(i domain.QueueItem) bool { return i.PostID == postID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *QueueRepo) ListRecent(_ context.Context, status domain.QueueStatus, limit int) ([]*domain.QueueItem, error) {
	out := r.filter(func(i domain.QueueItem) bool { return status == "" || i.Status == status })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledFor.After(out[j].ScheduledFor) })
	return truncate(out, limit), nil
}

func (r *QueueRepo) Transition(_ context.Context, id string, from, to domain.QueueStatus, errMsg string) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("queue item %s: illegal transition %s -> %s", id, from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return queue.ErrNotFound
	}
	if item.Status != from {
		return queue.ErrStaleStatus
	}
	item.Status = to
	item.Error = errMsg
	r.items[id] = item
	return nil
}

func (r *QueueRepo) CountByStatus(_ context.Context) (map[domain.QueueStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.QueueStatus]int)
	for _, item := range r.items {
		counts[item.Status]++
	}
	return counts, nil
}

func (r *QueueRepo) filter(keep func(domain.QueueItem) bool) []*domain.QueueItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.QueueItem
	for _, item := range r.items {
		if keep(item) {
			item := item
			out = append(out, &item)
		}
	}
	return out
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
