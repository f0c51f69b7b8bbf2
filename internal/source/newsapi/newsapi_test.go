package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newSource(url, key string) *Source {
	cfg := &config.Config{}
	cfg.Sources.NewsAPIURL = url
	cfg.Sources.NewsAPIKey = key
	cfg.Sources.NewsAPIQuery = "technology OR AI"
	cfg.Sources.NewsAPIPageSize = 20
	return New(cfg, logger.NewNop())
}

func TestFetchMapsArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/everything", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		require.Equal(t, "en", r.URL.Query().Get("language"))
		require.Equal(t, "20", r.URL.Query().Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","articles":[
			{"title":"OpenAI ships a new model","description":"It is <b>fast</b>","url":"https://example.com/a","publishedAt":"2025-06-01T08:00:00Z","source":{"name":"Wired"}},
			{"title":"","description":"untitled","url":"https://example.com/b","publishedAt":"2025-06-01T08:00:00Z","source":{"name":"Wired"}}
		]}`))
	}))
	defer srv.Close()

	s := newSource(srv.URL, "secret")
	defer s.Close()

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "OpenAI ships a new model", items[0].Title)
	require.Equal(t, "It is fast", items[0].Body)
	require.Equal(t, "Wired", items[0].SourceName)
}

func TestFetchWithoutKeyMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	s := newSource(srv.URL, "")
	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
	require.Zero(t, calls.Load())
}

func TestFetchSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"Your API key is invalid"}`))
	}))
	defer srv.Close()

	_, err := newSource(srv.URL, "bad").Fetch(context.Background())
	require.ErrorContains(t, err, "Your API key is invalid")
}
