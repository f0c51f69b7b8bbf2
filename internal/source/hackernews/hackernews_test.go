package hackernews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestFetchTopStories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[1,2,3,4]`))
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"type":"story","title":"Show HN: A tiny database","url":"https://example.com/db","time":1748764800}`))
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":2,"type":"story","title":"Ask HN: No link here","text":"<p>question</p>","time":1748764800}`))
	})
	mux.HandleFunc("/item/3.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/item/4.json", func(http.ResponseWriter, *http.Request) {
		t.Error("story beyond the top limit was requested")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Sources.HackerNewsURL = srv.URL
	cfg.Sources.HackerNewsTop = 3
	s := New(cfg, logger.NewNop())
	defer s.Close()

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Show HN: A tiny database", items[0].Title)
	require.Equal(t, "Show HN: A tiny database", items[0].Body)
	require.Equal(t, "Hacker News", items[0].SourceName)
	require.Equal(t, int64(1748764800), items[0].PublishedAt.Unix())
}
