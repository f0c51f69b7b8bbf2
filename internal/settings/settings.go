// Package settings reads and writes the runtime switches kept in the configuration store.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/configuration"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

const (
	TwitterFreeLimit    = 280
	TwitterPremiumLimit = 25000
)

type toggle struct {
	Enabled   bool       `json:"enabled"`
	Reason    string     `json:"reason,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type Settings struct {
	repo   configuration.Repository
	logger logger.Logger
}

func New(repo configuration.Repository, log logger.Logger) *Settings {
	return &Settings{
		repo:   repo,
		logger: log.WithComponent("Settings"),
	}
}

// EmergencyStopped reports whether externally visible actions must be skipped.
// An unreadable flag counts as stopped.
func (s *Settings) EmergencyStopped(ctx context.Context) bool {
	t, err := s.toggle(ctx, domain.ConfigEmergencyStop)
	if err != nil {
		s.logger.Error("Failed to read emergency stop flag, treating as stopped", "error", err)
		return true
	}
	return t.Enabled
}

func (s *Settings) SetEmergencyStop(ctx context.Context, enabled bool, reason string) error {
	now := time.Now().UTC()
	return s.setToggle(ctx, domain.ConfigEmergencyStop, toggle{Enabled: enabled, Reason: reason, Timestamp: &now},
		"Halts queue drains and engagement cycles")
}

// AutoEngagementEnabled is off unless explicitly switched on.
func (s *Settings) AutoEngagementEnabled(ctx context.Context) bool {
	t, err := s.toggle(ctx, domain.ConfigAutoEngagement)
	if err != nil {
		s.logger.Warn("Failed to read auto engagement flag", "error", err)
		return false
	}
	return t.Enabled
}

func (s *Settings) SetAutoEngagement(ctx context.Context, enabled bool) error {
	return s.setToggle(ctx, domain.ConfigAutoEngagement, toggle{Enabled: enabled},
		"Runs like, retweet and comment cycles")
}

// TwitterCharacterLimit depends on the account tier stored under twitter_account_type.
func (s *Settings) TwitterCharacterLimit(ctx context.Context) int {
	c, err := s.repo.Get(ctx, domain.ConfigTwitterAccountType)
	if err != nil {
		if !errors.Is(err, configuration.ErrNotFound) {
			s.logger.Warn("Failed to read twitter account type", "error", err)
		}
		return TwitterFreeLimit
	}

	var tier string
	if err := json.Unmarshal(c.Value, &tier); err != nil || tier != "premium" {
		return TwitterFreeLimit
	}
	return TwitterPremiumLimit
}

// SetTwitterAccountType stores the account tier, "free" or "premium".
func (s *Settings) SetTwitterAccountType(ctx context.Context, tier string) error {
	if tier != "free" && tier != "premium" {
		return fmt.Errorf("unknown twitter account type %q", tier)
	}
	value, err := json.Marshal(tier)
	if err != nil {
		return err
	}
	_, err = s.repo.Set(ctx, domain.Configuration{
		Key:         domain.ConfigTwitterAccountType,
		Value:       value,
		Description: "Twitter character limit tier",
	})
	return err
}

func (s *Settings) toggle(ctx context.Context, key string) (toggle, error) {
	c, err := s.repo.Get(ctx, key)
	if errors.Is(err, configuration.ErrNotFound) {
		return toggle{}, nil
	}
	if err != nil {
		return toggle{}, err
	}

	var t toggle
	if err := json.Unmarshal(c.Value, &t); err != nil {
		return toggle{}, err
	}
	return t, nil
}

func (s *Settings) setToggle(ctx context.Context, key string, t toggle, description string) error {
	value, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.repo.Set(ctx, domain.Configuration{Key: key, Value: value, Description: description})
	return err
}

var Module = fx.Module("settings", fx.Provide(New))
