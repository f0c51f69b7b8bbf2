package browser

import (
	"errors"
	"fmt"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	pkgerrors "github.com/orgball2608/technews-autopilot/pkg/errors"
)

// Manager holds one Session per configured platform.
type Manager struct {
	sessions map[domain.Platform]*Session
}

func NewManager(sessions ...*Session) *Manager {
	m := &Manager{sessions: make(map[domain.Platform]*Session, len(sessions))}
	for _, s := range sessions {
		m.sessions[s.Platform()] = s
	}
	return m
}

func (m *Manager) Session(platform domain.Platform) (*Session, error) {
	s, ok := m.sessions[platform]
	if !ok {
		return nil, pkgerrors.Wrap(pkgerrors.ErrUnsupported, fmt.Sprintf("no session for platform %q", platform))
	}
	return s, nil
}

func (m *Manager) Platforms() []domain.Platform {
	platforms := make([]domain.Platform, 0, len(m.sessions))
	for p := range m.sessions {
		platforms = append(platforms, p)
	}
	return platforms
}

func (m *Manager) Close() error {
	var errs []error
	for _, s := range m.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Platform(), err))
		}
	}
	return errors.Join(errs...)
}
