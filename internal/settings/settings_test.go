package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

type brokenRepo struct{ *memory.ConfigurationRepo }

func (brokenRepo) Get(context.Context, string) (*domain.Configuration, error) {
	return nil, errors.New("connection refused")
}

func TestEmergencyStopRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(memory.NewConfigurationRepo(), logger.NewNop())

	require.False(t, s.EmergencyStopped(ctx))
	require.NoError(t, s.SetEmergencyStop(ctx, true, "operator"))
	require.True(t, s.EmergencyStopped(ctx))
	require.NoError(t, s.SetEmergencyStop(ctx, false, ""))
	require.False(t, s.EmergencyStopped(ctx))
}

func TestEmergencyStopFailsClosed(t *testing.T) {
	s := New(brokenRepo{memory.NewConfigurationRepo()}, logger.NewNop())

	require.True(t, s.EmergencyStopped(context.Background()))
	require.False(t, s.AutoEngagementEnabled(context.Background()))
}

func TestTwitterCharacterLimit(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewConfigurationRepo()
	s := New(repo, logger.NewNop())

	require.Equal(t, TwitterFreeLimit, s.TwitterCharacterLimit(ctx))

	_, err := repo.Set(ctx, domain.Configuration{Key: domain.ConfigTwitterAccountType, Value: []byte(`"premium"`)})
	require.NoError(t, err)
	require.Equal(t, TwitterPremiumLimit, s.TwitterCharacterLimit(ctx))

	_, err = repo.Set(ctx, domain.Configuration{Key: domain.ConfigTwitterAccountType, Value: []byte(`"free"`)})
	require.NoError(t, err)
	require.Equal(t, TwitterFreeLimit, s.TwitterCharacterLimit(ctx))
}

func TestAutoEngagementDefaultsOff(t *testing.T) {
	ctx := context.Background()
	s := New(memory.NewConfigurationRepo(), logger.NewNop())

	require.False(t, s.AutoEngagementEnabled(ctx))
	require.NoError(t, s.SetAutoEngagement(ctx, true))
	require.True(t, s.AutoEngagementEnabled(ctx))
}

func TestSetTwitterAccountType(t *testing.T) {
	ctx := context.Background()
	s := New(memory.NewConfigurationRepo(), logger.NewNop())

	require.Error(t, s.SetTwitterAccountType(ctx, "gold"))
	require.NoError(t, s.SetTwitterAccountType(ctx, "premium"))
	require.Equal(t, TwitterPremiumLimit, s.TwitterCharacterLimit(ctx))
}
