package aiimpl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

type instantTimer struct {
	mu    sync.Mutex
	c     chan time.Time
	waits []time.Duration
}

func (t *instantTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}

func newTestImpl(t *testing.T, endpoint string, keys ...string) (*Impl, *instantTimer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Groq.Endpoint = endpoint
	cfg.Groq.Model = "test-model"
	cfg.Groq.Keys = keys
	cfg.Groq.Timeout = 5 * time.Second

	impl := New(Opts{Config: cfg, Logger: logger.NewNop()})
	timer := &instantTimer{}
	impl.timer = timer
	t.Cleanup(func() { _ = impl.http.Close() })
	return impl, timer
}

func writeCompletion(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": text}},
		},
	})
}

func TestInvokeRotatesOnRateLimit(t *testing.T) {
	var seen []string
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		mu.Lock()
		seen = append(seen, key)
		mu.Unlock()

		if key == "key-3" {
			writeCompletion(w, "  rewritten by key 3 ")
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	impl, timer := newTestImpl(t, srv.URL, "key-1", "key-2", "key-3")

	out, err := impl.Rewrite(context.Background(), "title", "body")
	require.NoError(t, err)
	require.Equal(t, "rewritten by key 3", out)
	require.Equal(t, []string{"key-1", "key-2", "key-3"}, seen)
	require.Equal(t, 2, impl.keys.Cursor())
	require.Equal(t, 2, impl.keys.Rotations())
	require.Equal(t, []time.Duration{0, 0}, timer.waits)
}

func TestInvokeBacksOffExponentiallyOnOtherErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	impl, timer := newTestImpl(t, srv.URL, "a", "b")

	_, err := impl.GenerateComment(context.Background(), "post")
	require.Error(t, err)
	require.Equal(t, errors.CodeAI, errors.GetCode(err))
	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, timer.waits)
	require.Equal(t, 2, impl.keys.Rotations())
	require.Zero(t, impl.keys.Cursor())
}

func TestInvokeRotatesAfterFinalThrottledAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	impl, _ := newTestImpl(t, srv.URL, "a", "b", "c", "d")

	_, err := impl.Rewrite(context.Background(), "title", "body")
	require.Error(t, err)
	require.Equal(t, 3, impl.keys.Rotations())
	require.Equal(t, 3, impl.keys.Cursor())
}

func TestInvokeMixesImmediateAndDelayedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			writeCompletion(w, "ok")
		}
	}))
	defer srv.Close()

	impl, timer := newTestImpl(t, srv.URL, "a", "b", "c")

	out, err := impl.GenerateReply(context.Background(), "post", "comment")
	require.NoError(t, err)
	require.Equal(t, "ok", out)
	require.Equal(t, []time.Duration{0, 2 * time.Second}, timer.waits)
}

func TestInvokeWithoutKeysFailsBeforeIO(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	impl, _ := newTestImpl(t, srv.URL, " ", "")

	_, err := impl.Rewrite(context.Background(), "title", "body")
	require.ErrorIs(t, err, errors.ErrNoAPIKeys)
	require.Zero(t, calls.Load())
}

func TestSplitIntoThreadNeverCallsTheAPI(t *testing.T) {
	impl, _ := newTestImpl(t, "http://127.0.0.1:0")

	chunks, err := impl.SplitIntoThread(context.Background(), strings.Repeat("word ", 100), 280)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
}

func TestKeyRingConcurrentRotation(t *testing.T) {
	ring := NewKeyRing([]string{"a", "b", "c"})

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ring.Rotate()
		}()
	}
	wg.Wait()

	require.Equal(t, 30, ring.Rotations())
	require.Equal(t, 0, ring.Cursor())
}
