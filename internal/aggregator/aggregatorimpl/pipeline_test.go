package aggregatorimpl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity/activityimpl"
	mock_ai "github.com/orgball2608/technews-autopilot/internal/ai/mocks"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	mock_publisher "github.com/orgball2608/technews-autopilot/internal/publisher/mocks"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/queue/queueimpl"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/internal/source"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAggregatedItemIsDeliveredToEveryPlatform(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.Schedule.Platforms = []string{"twitter", "telegram"}
	cfg.Schedule.AutoSchedule = true
	cfg.Queue.Workers = 1
	cfg.Queue.MaxRequeues = 3

	posts := memory.NewPostRepo()
	items := memory.NewQueueRepo()
	analytics := memory.NewAnalyticsRepo()
	activities := memory.NewActivityRepo()
	recorder := activityimpl.New(activityimpl.Opts{
		Activities:  activities,
		Engagements: memory.NewEngagementRepo(),
		Analytics:   analytics,
		Posts:       posts,
		Broadcaster: realtime.Nop{},
		Logger:      log,
	})

	aiClient := mock_ai.NewMockClient(ctrl)
	pub := mock_publisher.NewMockPublisher(ctrl)
	q := queueimpl.New(queueimpl.Opts{
		Config:      cfg,
		Items:       items,
		Posts:       posts,
		AI:          aiClient,
		Publisher:   pub,
		Recorder:    recorder,
		Settings:    settings.New(memory.NewConfigurationRepo(), log),
		Broadcaster: realtime.Nop{},
		Logger:      log,
	})
	agg := New(Opts{
		Config:   cfg,
		Sources:  []source.Source{&stubSource{name: "rss", items: []domain.RawItem{item("New GPU Architecture Unveiled")}}},
		Posts:    posts,
		Queue:    q,
		Recorder: recorder,
		Logger:   log,
	})

	res, err := agg.Aggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	require.Equal(t, 1, res.Scheduled)

	created, err := posts.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, created, 1)
	post := created[0]
	require.Equal(t, "New GPU Architecture Unveiled", post.Title)
	require.Equal(t, domain.PostStatusPending, post.Status)

	scheduled, err := items.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, scheduled, 2)

	aiClient.EXPECT().Rewrite(gomock.Any(), post.Title, post.Content).Return("GPUs doubled their throughput.", nil).Times(1)
	pub.EXPECT().Publish(gomock.Any(), domain.PlatformTwitter, "GPUs doubled their throughput.", gomock.Any()).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), domain.PlatformTelegram, "GPUs doubled their throughput.", gomock.Any()).Return(nil)

	drained, err := q.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, queue.DrainResult{Due: 2, Posted: 2}, drained)

	stored, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PostStatusPosted, stored.Status)

	rows, err := analytics.ListSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, post.ID, row.PostID)
		require.Zero(t, row.Total())
	}

	events, err := activities.GetRecent(ctx, 100)
	require.NoError(t, err)
	delivered := 0
	for _, e := range events {
		if e.Type == domain.ActivityPost && strings.HasPrefix(e.Title, "Posted to ") {
			delivered++
		}
	}
	require.Equal(t, 2, delivered)
}
