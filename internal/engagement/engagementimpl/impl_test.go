package engagementimpl

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mock_ai "github.com/orgball2608/technews-autopilot/internal/ai/mocks"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/publisher"
	mock_publisher "github.com/orgball2608/technews-autopilot/internal/publisher/mocks"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	engager     *Impl
	ai          *mock_ai.MockClient
	publisher   *mock_publisher.MockPublisher
	targets     *memory.TargetRepo
	engagements *memory.EngagementRepo
	settings    *settings.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.Engagement.LikesPerCycle = 3
	cfg.Engagement.RetweetsPerCycle = 2
	cfg.Engagement.CommentsPerCycle = 1

	f := &fixture{
		ai:          mock_ai.NewMockClient(ctrl),
		publisher:   mock_publisher.NewMockPublisher(ctrl),
		targets:     memory.NewTargetRepo(),
		engagements: memory.NewEngagementRepo(),
		settings:    settings.New(memory.NewConfigurationRepo(), log),
	}
	f.engager = New(Opts{
		Config:      cfg,
		Targets:     f.targets,
		Engagements: f.engagements,
		Publisher:   f.publisher,
		AI:          f.ai,
		Settings:    f.settings,
		Logger:      log,
	})
	f.engager.pick = func(targets []*domain.TargetAccount, n int) []*domain.TargetAccount {
		return targets[:min(n, len(targets))]
	}
	return f
}

func (f *fixture) addTargets(t *testing.T, typ domain.EngagementType, n int) {
	t.Helper()
	for i := range n {
		_, err := f.targets.Create(context.Background(), domain.TargetAccount{
			Platform: domain.PlatformTwitter,
			Username: fmt.Sprintf("%s_account_%d", typ, i),
			Type:     typ,
			IsActive: true,
		})
		require.NoError(t, err)
	}
}

func TestCycleRespectsPerTypeCaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.settings.SetAutoEngagement(ctx, true))

	f.addTargets(t, domain.EngagementLike, 5)
	f.addTargets(t, domain.EngagementRetweet, 3)
	f.addTargets(t, domain.EngagementComment, 2)

	var got []domain.EngagementType
	f.publisher.EXPECT().Engage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a publisher.Action) error {
			require.Equal(t, domain.PlatformTwitter, a.Platform)
			require.Empty(t, a.Content)
			got = append(got, a.Type)
			if a.Type == domain.EngagementRetweet {
				return errors.New("retweet button missing")
			}
			return nil
		}).Times(6)

	res, err := f.engager.Cycle(ctx)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, 6, res.Attempted)
	require.Equal(t, 4, res.Succeeded)
	require.Equal(t, []domain.EngagementType{
		domain.EngagementLike, domain.EngagementLike, domain.EngagementLike,
		domain.EngagementRetweet, domain.EngagementRetweet,
		domain.EngagementComment,
	}, got)
}

func TestCycleEmergencyStopWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.settings.SetAutoEngagement(ctx, true))
	require.NoError(t, f.settings.SetEmergencyStop(ctx, true, "operator"))
	f.addTargets(t, domain.EngagementLike, 2)

	res, err := f.engager.Cycle(ctx)
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Zero(t, res.Attempted)

	entries, err := f.engagements.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCycleSkippedWhenAutoEngagementOff(t *testing.T) {
	f := newFixture(t)
	f.addTargets(t, domain.EngagementLike, 2)

	res, err := f.engager.Cycle(context.Background())
	require.NoError(t, err)
	require.True(t, res.Skipped)
}

func TestReplySweepAnswersUnrepliedComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seed := []domain.EngagementLogEntry{
		{Type: domain.EngagementComment, Platform: domain.PlatformTwitter, TargetAccount: "bob", TargetPostID: "77", Success: true},
		{Type: domain.EngagementReply, Platform: domain.PlatformTwitter, TargetAccount: "bob", TargetPostID: "77", Content: "thanks bob", Success: true},
		{Type: domain.EngagementComment, Platform: domain.PlatformTwitter, TargetAccount: "carol", Content: "our own comment", Success: true},
		{Type: domain.EngagementComment, Platform: domain.PlatformTwitter, TargetAccount: "dave", Success: false, Error: "timeout"},
		{Type: domain.EngagementComment, Platform: domain.PlatformTwitter, TargetAccount: "alice", TargetPostID: "123", Success: true},
	}
	for _, e := range seed {
		_, err := f.engagements.Create(ctx, e)
		require.NoError(t, err)
	}

	f.ai.EXPECT().GenerateReply(gomock.Any(), "Tech news post content", "123").Return("Great point, Alice!", nil)
	f.publisher.EXPECT().Engage(gomock.Any(), publisher.Action{
		Type:         domain.EngagementReply,
		Platform:     domain.PlatformTwitter,
		Target:       "alice",
		TargetPostID: "123",
		Content:      "Great point, Alice!",
	}).Return(nil)

	sent, err := f.engager.ReplySweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
}

func TestReplySweepSkipsWhenGenerationFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engagements.Create(ctx, domain.EngagementLogEntry{
		Type: domain.EngagementComment, Platform: domain.PlatformTwitter, TargetAccount: "alice", Success: true,
	})
	require.NoError(t, err)

	f.ai.EXPECT().GenerateReply(gomock.Any(), gomock.Any(), "Comment content").Return("", errors.New("no api keys configured"))

	sent, err := f.engager.ReplySweep(ctx)
	require.NoError(t, err)
	require.Zero(t, sent)
}

func TestReplySweepEmergencyStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.settings.SetEmergencyStop(ctx, true, "operator"))

	_, err := f.engagements.Create(ctx, domain.EngagementLogEntry{
		Type: domain.EngagementComment, Platform: domain.PlatformTwitter, TargetAccount: "alice", Success: true,
	})
	require.NoError(t, err)

	sent, err := f.engager.ReplySweep(ctx)
	require.NoError(t, err)
	require.Zero(t, sent)
}
