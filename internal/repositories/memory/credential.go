package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/credential"
)

type CredentialRepo struct {
	mu    sync.Mutex
	creds map[string]domain.SocialCredential
}

func NewCredentialRepo() *CredentialRepo {
	return &CredentialRepo{creds: make(map[string]domain.SocialCredential)}
}

var _ credential.Repository = (*CredentialRepo)(nil)

func (r *CredentialRepo) Create(_ context.Context, c domain.SocialCredential) (*domain.SocialCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.creds[c.ID] = c
	return &c, nil
}

func (r *CredentialRepo) GetActive(_ context.Context, platform domain.Platform) (*domain.SocialCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *domain.SocialCredential
	for _, c := range r.creds {
		if c.Platform != platform || !c.IsActive {
			continue
		}
		if found == nil || c.UpdatedAt.After(found.UpdatedAt) {
			c := c
			found = &c
		}
	}
	if found == nil {
		return nil, credential.ErrNotFound
	}
	return found, nil
}

func (r *CredentialRepo) MarkLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.creds[id]
	if !ok {
		return credential.ErrNotFound
	}
	c.LastLogin = &at
	c.UpdatedAt = at
	r.creds[id] = c
	return nil
}
