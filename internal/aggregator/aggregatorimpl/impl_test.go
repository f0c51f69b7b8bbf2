package aggregatorimpl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity/activityimpl"
	"github.com/orgball2608/technews-autopilot/internal/aggregator"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	"github.com/orgball2608/technews-autopilot/internal/source"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name  string
	items []domain.RawItem
	err   error
	panic bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]domain.RawItem, error) {
	if s.panic {
		panic("boom")
	}
	return s.items, s.err
}

type recordingQueue struct {
	mu     sync.Mutex
	posts  []string
	delays []time.Duration
}

func (q *recordingQueue) Schedule(_ context.Context, p *domain.Post, delay time.Duration) ([]*domain.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.posts = append(q.posts, p.ID)
	q.delays = append(q.delays, delay)
	return nil, nil
}

func (q *recordingQueue) Drain(context.Context) (queue.DrainResult, error) {
	return queue.DrainResult{}, nil
}

func (q *recordingQueue) Requeue(context.Context, string) (*domain.QueueItem, error) {
	return nil, queue.ErrNotRequeueable
}

type fixture struct {
	agg        *Impl
	posts      *memory.PostRepo
	activities *memory.ActivityRepo
	queue      *recordingQueue
}

func newFixture(t *testing.T, autoSchedule bool, sources ...source.Source) *fixture {
	t.Helper()
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.Schedule.Platforms = []string{"twitter", "telegram", "facebook", "twitter"}
	cfg.Schedule.AutoSchedule = autoSchedule
	cfg.Schedule.PostDelay = time.Minute

	f := &fixture{
		posts:      memory.NewPostRepo(),
		activities: memory.NewActivityRepo(),
		queue:      &recordingQueue{},
	}
	recorder := activityimpl.New(activityimpl.Opts{
		Activities:  f.activities,
		Engagements: memory.NewEngagementRepo(),
		Analytics:   memory.NewAnalyticsRepo(),
		Posts:       f.posts,
		Broadcaster: realtime.Nop{},
		Logger:      log,
	})

	f.agg = New(Opts{
		Config:   cfg,
		Sources:  sources,
		Posts:    f.posts,
		Queue:    f.queue,
		Recorder: recorder,
		Logger:   log,
	})
	return f
}

func (f *fixture) activityTitles(t *testing.T) []string {
	t.Helper()
	events, err := f.activities.GetRecent(context.Background(), 100)
	require.NoError(t, err)

	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	return titles
}

func item(title string) domain.RawItem {
	return domain.RawItem{
		Title:      title,
		Body:       title + " body",
		Link:       "https://example.com/" + title,
		SourceName: "TechCrunch",
	}
}

func TestAggregateCreatesPendingPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true,
		&stubSource{name: "rss", items: []domain.RawItem{
			item("Rust 2.0 roadmap announced today"),
			item("short"),
		}},
		&stubSource{name: "hackernews", items: []domain.RawItem{
			item("Postgres 18 adds async io support"),
		}},
	)

	res, err := f.agg.Aggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, res.Fetched)
	require.Equal(t, 1, res.Rejected)
	require.Equal(t, 2, res.Created)
	require.Equal(t, 2, res.Scheduled)
	require.Empty(t, res.FailedSources)

	posts, err := f.posts.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		require.Equal(t, domain.PostStatusPending, p.Status)
		require.Equal(t, domain.DefaultNiche, p.Niche)
		require.Equal(t, []domain.Platform{domain.PlatformTwitter, domain.PlatformTelegram, domain.PlatformFacebook}, p.Platforms)
		require.False(t, p.AIProcessed)
		require.NotNil(t, p.Similarity)
	}

	require.Len(t, f.queue.posts, 2)
	require.Equal(t, []time.Duration{time.Minute, time.Minute}, f.queue.delays)

	titles := f.activityTitles(t)
	require.Contains(t, titles, "Content Aggregation Complete")
	require.Contains(t, titles, "Content Filtered")
	count := 0
	for _, title := range titles {
		if title == "New content aggregated" {
			count++
		}
	}
	require.Equal(t, 2, count)
}

func TestAggregateDropsTitlesSimilarToRecentPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, &stubSource{name: "rss", items: []domain.RawItem{
		item("Apple unveils the new M5 MacBook Pro"),
	}})

	_, err := f.posts.Create(ctx, domain.Post{Title: "Apple unveils the new M5 MacBook Pro", Status: domain.PostStatusPosted})
	require.NoError(t, err)

	res, err := f.agg.Aggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Rejected)
	require.Zero(t, res.Created)
}

func TestAggregateIsolatesFailingSources(t *testing.T) {
	f := newFixture(t, false,
		&stubSource{name: "newsapi", err: errors.New("401 unauthorized")},
		&stubSource{name: "hackernews", panic: true},
		&stubSource{name: "rss", items: []domain.RawItem{item("Kubernetes 1.34 release notes")}},
	)

	res, err := f.agg.Aggregate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	require.Zero(t, res.Scheduled)
	require.ElementsMatch(t, []string{"newsapi", "hackernews"}, res.FailedSources)
	require.Empty(t, f.queue.posts)

	failures := 0
	for _, title := range f.activityTitles(t) {
		if title == "Content Source Failed" {
			failures++
		}
	}
	require.Equal(t, 2, failures)
}

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) Name() string { return "slow" }

func (s *blockingSource) Fetch(context.Context) ([]domain.RawItem, error) {
	close(s.entered)
	<-s.release
	return nil, nil
}

func TestOverlappingAggregationIsSkipped(t *testing.T) {
	src := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	f := newFixture(t, false, src)

	done := make(chan aggregator.Result)
	go func() {
		res, _ := f.agg.Aggregate(context.Background())
		done <- res
	}()

	<-src.entered
	res, err := f.agg.Aggregate(context.Background())
	require.NoError(t, err)
	require.True(t, res.Skipped)

	close(src.release)
	require.False(t, (<-done).Skipped)
}
