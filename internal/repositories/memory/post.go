package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/post"
)

type PostRepo struct {
	mu    sync.RWMutex
	posts map[string]domain.Post
}

func NewPostRepo() *PostRepo {
	return &PostRepo{posts: make(map[string]domain.Post)}
}

var _ post.Repository = (*PostRepo)(nil)

func (r *PostRepo) Create(_ context.Context, p domain.Post) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := r.posts[p.ID]; ok {
		return nil, post.ErrAlreadyExists
	}
	if p.Status == "" {
		p.Status = domain.PostStatusPending
	}
	if p.Niche == "" {
		p.Niche = domain.DefaultNiche
	}
	p.CreatedAt = time.Now().UTC()
	p.Platforms = append([]domain.Platform(nil), p.Platforms...)
	p.ThreadData = append([]string(nil), p.ThreadData...)

	r.posts[p.ID] = p
	return clonePost(p), nil
}

func (r *PostRepo) GetByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, post.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *PostRepo) GetRecent(_ context.Context, limit int) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, clonePost(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PostRepo) Update(_ context.Context, id string, upd domain.PostUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return post.ErrNotFound
	}
	if upd.ProcessedContent != nil {
		p.ProcessedContent = *upd.ProcessedContent
	}
	if upd.AIProcessed != nil {
		p.AIProcessed = *upd.AIProcessed
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.PostedAt != nil {
		at := *upd.PostedAt
		p.PostedAt = &at
	}
	if upd.ThreadData != nil {
		p.ThreadData = append([]string(nil), upd.ThreadData...)
	}
	r.posts[id] = p
	return nil
}

func (r *PostRepo) CountSince(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.posts {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func clonePost(p domain.Post) *domain.Post {
	p.Platforms = append([]domain.Platform(nil), p.Platforms...)
	p.ThreadData = append([]string(nil), p.ThreadData...)
	if p.Similarity != nil {
		s := *p.Similarity
		p.Similarity = &s
	}
	if p.PostedAt != nil {
		at := *p.PostedAt
		p.PostedAt = &at
	}
	return &p
}
