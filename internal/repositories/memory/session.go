package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/session"
)

type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.BrowserSession
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.BrowserSession)}
}

var _ session.Repository = (*SessionRepo)(nil)

func (r *SessionRepo) GetActive(_ context.Context, platform domain.Platform) (*domain.BrowserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.Platform == platform && s.IsActive {
			return &s, nil
		}
	}
	return nil, session.ErrNotFound
}

func (r *SessionRepo) Save(_ context.Context, s domain.BrowserSession) (*domain.BrowserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.sessions {
		if existing.Platform == s.Platform && existing.IsActive {
			existing.IsActive = false
			r.sessions[id] = existing
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.IsActive = true
	s.LastUsed, s.CreatedAt = now, now
	r.sessions[s.ID] = s
	return &s, nil
}

func (r *SessionRepo) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	s.LastUsed = at
	r.sessions[id] = s
	return nil
}

func (r *SessionRepo) Deactivate(_ context.Context, platform domain.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.Platform == platform {
			s.IsActive = false
			r.sessions[id] = s
		}
	}
	return nil
}
