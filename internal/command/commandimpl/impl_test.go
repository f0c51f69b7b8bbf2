package commandimpl

import (
	"context"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/technews-autopilot/internal/activity/activityimpl"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	queuerepo "github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

const (
	operatorID = int64(4242)
	chatID     = int64(4242)
)

type chatRecorder struct {
	mu       sync.Mutex
	messages []string
	updates  chan tgbotapi.Update
	stopped  bool
}

func (r *chatRecorder) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return r.updates
}
func (r *chatRecorder) SendMessageToChannel(string) (int, error) { return 0, nil }
func (r *chatRecorder) SendMessageToUser(string)                 {}
func (r *chatRecorder) Enabled() bool                            { return true }

func (r *chatRecorder) StopReceivingUpdates() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

func (r *chatRecorder) SendMessage(_ int64, text string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return len(r.messages), nil
}

func (r *chatRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type stubQueue struct {
	queue.Queue
	requeued []string
	item     *domain.QueueItem
	err      error
}

func (q *stubQueue) Requeue(_ context.Context, id string) (*domain.QueueItem, error) {
	q.requeued = append(q.requeued, id)
	return q.item, q.err
}

type fixture struct {
	cmd        *CommandImpl
	chat       *chatRecorder
	queue      *stubQueue
	items      *memory.QueueRepo
	activities *memory.ActivityRepo
	settings   *settings.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.Telegram.User = operatorID

	f := &fixture{
		chat:       &chatRecorder{updates: make(chan tgbotapi.Update)},
		queue:      &stubQueue{},
		items:      memory.NewQueueRepo(),
		activities: memory.NewActivityRepo(),
		settings:   settings.New(memory.NewConfigurationRepo(), log),
	}
	posts := memory.NewPostRepo()
	recorder := activityimpl.New(activityimpl.Opts{
		Activities:  f.activities,
		Engagements: memory.NewEngagementRepo(),
		Analytics:   memory.NewAnalyticsRepo(),
		Posts:       posts,
		Broadcaster: realtime.Nop{},
		Logger:      log,
	})

	f.cmd = New(Opts{
		Telegram:   f.chat,
		Queue:      f.queue,
		QueueItems: f.items,
		Posts:      posts,
		Settings:   f.settings,
		Recorder:   recorder,
		Logger:     log,
		Config:     cfg,
	})
	return f
}

func (f *fixture) run(t *testing.T, cmd, args string) string {
	t.Helper()
	require.NoError(t, f.cmd.processCommand(context.Background(), chatID, operatorID, cmd, args))
	return f.chat.last()
}

func TestStopAndResume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.Contains(t, f.run(t, "stop", "  account flagged "), "Emergency stop activated")
	require.True(t, f.settings.EmergencyStopped(ctx))

	events, err := f.activities.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "account flagged", events[0].Description)

	require.Contains(t, f.run(t, "resume", ""), "resumed")
	require.False(t, f.settings.EmergencyStopped(ctx))
}

func TestStatusShowsQueueCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.items.Create(ctx, domain.QueueItem{PostID: "p1", Platform: domain.PlatformTwitter, Status: domain.QueueStatusScheduled})
	require.NoError(t, err)
	_, err = f.items.Create(ctx, domain.QueueItem{PostID: "p1", Platform: domain.PlatformTelegram, Status: domain.QueueStatusFailed, Error: "chat not found"})
	require.NoError(t, err)

	status := f.run(t, "status", "")
	require.Contains(t, status, "Emergency stop: OFF")
	require.Contains(t, status, "scheduled: 1")
	require.Contains(t, status, "failed: 1")
	require.Contains(t, status, "Twitter limit: 280 chars")
}

func TestQueueListsFailedItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.Contains(t, f.run(t, "queue", ""), "No failed queue items")

	item, err := f.items.Create(ctx, domain.QueueItem{PostID: "p1", Platform: domain.PlatformFacebook, Status: domain.QueueStatusFailed, Error: "composer did not open"})
	require.NoError(t, err)

	msg := f.run(t, "queue", "")
	require.Contains(t, msg, item.ID)
	require.Contains(t, msg, "composer did not open")
}

func TestRetry(t *testing.T) {
	f := newFixture(t)

	require.Contains(t, f.run(t, "retry", ""), "/retry <item-id>")
	require.Empty(t, f.queue.requeued)

	f.queue.err = queuerepo.ErrNotFound
	require.Contains(t, f.run(t, "retry", "q-404"), "not found")

	f.queue.err = queue.ErrRequeueLimit
	require.Contains(t, f.run(t, "retry", "q-1"), "retry limit")

	f.queue.err = nil
	f.queue.item = &domain.QueueItem{ID: "q-2", Platform: domain.PlatformTwitter, RetryCount: 1}
	require.Contains(t, f.run(t, "retry", " q-1 "), "Requeued for twitter as q-2 (attempt 2)")
	require.Equal(t, []string{"q-404", "q-1", "q-1"}, f.queue.requeued)
}

func TestStrangersAreRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.cmd.processCommand(ctx, 99, 99, "stop", ""))
	require.Contains(t, f.chat.last(), "not allowed")
	require.False(t, f.settings.EmergencyStopped(ctx))
}

func TestCommandsAreRateLimited(t *testing.T) {
	f := newFixture(t)

	for range 5 {
		require.Contains(t, f.run(t, "help", ""), "/status")
	}
	require.Contains(t, f.run(t, "help", ""), "Too many commands")
}

func TestHandleCommandStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.cmd.HandleCommand(ctx) }()
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	f.chat.mu.Lock()
	defer f.chat.mu.Unlock()
	require.True(t, f.chat.stopped)
}
