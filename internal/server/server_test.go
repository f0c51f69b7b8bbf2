package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
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

type stubQueue struct {
	queue.Queue
	item *domain.QueueItem
	err  error
}

func (q *stubQueue) Requeue(context.Context, string) (*domain.QueueItem, error) {
	return q.item, q.err
}

type harness struct {
	server      *Server
	queue       *stubQueue
	activities  *memory.ActivityRepo
	engagements *memory.EngagementRepo
	settings    *settings.Settings
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	cfg := &config.Config{}
	cfg.App.Env = "test"

	h := &harness{
		queue:       &stubQueue{},
		activities:  memory.NewActivityRepo(),
		engagements: memory.NewEngagementRepo(),
		settings:    settings.New(memory.NewConfigurationRepo(), log),
	}
	posts := memory.NewPostRepo()
	recorder := activityimpl.New(activityimpl.Opts{
		Activities:  h.activities,
		Engagements: h.engagements,
		Analytics:   memory.NewAnalyticsRepo(),
		Posts:       posts,
		Broadcaster: realtime.Nop{},
		Logger:      log,
	})

	h.server = New(Opts{
		Config:      cfg,
		Logger:      log,
		Hub:         realtime.NewHub(log),
		Recorder:    recorder,
		Posts:       posts,
		QueueItems:  memory.NewQueueRepo(),
		Queue:       h.queue,
		Engagements: h.engagements,
		Targets:     memory.NewTargetRepo(),
		Settings:    h.settings,
	})
	return h
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(resp, req)
	return resp
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	resp := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "ok", resp.Body.String())
}

func TestReportValidatesDays(t *testing.T) {
	h := newHarness(t)

	for _, days := range []string{"0", "-3", "abc", "366"} {
		resp := h.do(http.MethodGet, "/api/analytics/report/"+days, nil)
		require.Equal(t, http.StatusBadRequest, resp.Code, days)
	}

	resp := h.do(http.MethodGet, "/api/analytics/report/7", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Contains(t, body, "totalPosts")
	require.Contains(t, body, "averageEngagementRate")
}

func TestEmergencyStopToggle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	resp := h.do(http.MethodPost, "/api/emergency-stop", map[string]string{"reason": "suspicious login"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.True(t, h.settings.EmergencyStopped(ctx))

	events, err := h.activities.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, domain.ActivitySystem, events[0].Type)
	require.Equal(t, "Emergency Stop Activated", events[0].Title)
	require.Equal(t, "suspicious login", events[0].Description)

	resp = h.do(http.MethodDelete, "/api/emergency-stop", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.False(t, h.settings.EmergencyStopped(ctx))
}

func TestRequeueMapsErrors(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		err  error
		code int
	}{
		{queuerepo.ErrNotFound, http.StatusNotFound},
		{queue.ErrNotRequeueable, http.StatusConflict},
		{fmt.Errorf("%w: item q1 was retried 3 times", queue.ErrRequeueLimit), http.StatusConflict},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h.queue.err = tc.err
		resp := h.do(http.MethodPost, "/api/queue/q1/requeue", nil)
		require.Equal(t, tc.code, resp.Code, tc.err.Error())
	}

	h.queue.err = nil
	h.queue.item = &domain.QueueItem{ID: "q2", PostID: "p1", Platform: domain.PlatformTwitter, Status: domain.QueueStatusScheduled, RetryCount: 1}
	resp := h.do(http.MethodPost, "/api/queue/q1/requeue", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var item map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &item))
	require.Equal(t, "q2", item["id"])
	require.EqualValues(t, 1, item["retryCount"])
}

func TestListQueueRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/queue?status=lost", nil).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/queue?status=failed", nil).Code)
}

func TestInboundCommentIsLoggedForReplies(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	resp := h.do(http.MethodPost, "/api/engagement/inbound", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = h.do(http.MethodPost, "/api/engagement/inbound", map[string]string{
		"platform": "twitter",
		"account":  "@alice",
		"postId":   "1790000000000000000",
	})
	require.Equal(t, http.StatusAccepted, resp.Code)

	entries, err := h.engagements.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.EngagementComment, entries[0].Type)
	require.Equal(t, "alice", entries[0].TargetAccount)
	require.Empty(t, entries[0].Content)
	require.True(t, entries[0].Success)
}

func TestTwitterAccountTypeSetting(t *testing.T) {
	h := newHarness(t)

	resp := h.do(http.MethodPut, "/api/settings/twitter-account-type", map[string]string{"type": "gold"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = h.do(http.MethodPut, "/api/settings/twitter-account-type", map[string]string{"type": "premium"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"twitterCharacterLimit":25000}`, resp.Body.String())
}

func TestTargets(t *testing.T) {
	h := newHarness(t)

	body := map[string]string{"platform": "twitter", "username": "@kelseyhightower", "type": "like"}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/targets", body).Code)
	require.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/targets", body).Code)

	resp := h.do(http.MethodGet, "/api/targets/twitter/like", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var targets []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &targets))
	require.Len(t, targets, 1)
	require.Equal(t, "kelseyhightower", targets[0]["username"])

	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/targets/"+targets[0]["id"].(string), nil).Code)
	require.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/targets/missing", nil).Code)
}
