package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

type alertRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (a *alertRecorder) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return nil }
func (a *alertRecorder) StopReceivingUpdates()                                        {}
func (a *alertRecorder) SendMessage(int64, string) (int, error)                       { return 0, nil }
func (a *alertRecorder) SendMessageToChannel(string) (int, error)                     { return 0, nil }
func (a *alertRecorder) Enabled() bool                                                { return true }

func (a *alertRecorder) SendMessageToUser(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, text)
}

func (a *alertRecorder) sent() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

func newTestScheduler(t *testing.T, jobs, startup []Job, alerts *alertRecorder) *Scheduler {
	t.Helper()
	s, err := newScheduler(jobs, startup, time.UTC, time.Second, alerts, logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestRunRecoversPanicAndAlerts(t *testing.T) {
	alerts := &alertRecorder{}
	s := newTestScheduler(t, nil, nil, alerts)

	require.NotPanics(t, func() {
		s.run(Job{Name: "aggregation", Alert: true, Run: func(context.Context) error { panic("nil feed") }})
	})
	require.Equal(t, []string{"❌ aggregation failed: panic: nil feed"}, alerts.sent())
}

func TestRunAlertsOnlyWhenAsked(t *testing.T) {
	alerts := &alertRecorder{}
	s := newTestScheduler(t, nil, nil, alerts)

	s.run(Job{Name: "queue_drain", Run: func(context.Context) error { return errors.New("db down") }})
	require.Empty(t, alerts.sent())

	s.run(Job{Name: "aggregation", Alert: true, Run: func(context.Context) error { return errors.New("db down") }})
	require.Equal(t, []string{"❌ aggregation failed: db down"}, alerts.sent())
}

func TestRunBoundsJobByTimeout(t *testing.T) {
	s := newTestScheduler(t, nil, nil, &alertRecorder{})

	var deadline time.Time
	s.run(Job{Name: "engagement", Timeout: time.Hour, Run: func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	}})
	require.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)

	s.run(Job{Name: "engagement", Timeout: 10 * time.Millisecond, Run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
}

func TestStartRunsStartupJobsInOrderAndNeverOverlaps(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	startupJob := func(name string) Job {
		return Job{Name: name, Run: func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}}
	}

	var running, maxRunning, runs atomic.Int32
	slow := Job{Name: "queue_drain", Every: 10 * time.Millisecond, Run: func(ctx context.Context) error {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		runs.Add(1)
		select {
		case <-time.After(30 * time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	}}

	s := newTestScheduler(t, []Job{slow}, []Job{startupJob("aggregation"), startupJob("queue_drain")}, &alertRecorder{})
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	mu.Lock()
	require.Equal(t, []string{"aggregation", "queue_drain"}, order)
	mu.Unlock()
	require.Equal(t, int32(1), maxRunning.Load())

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, after, runs.Load())
}
