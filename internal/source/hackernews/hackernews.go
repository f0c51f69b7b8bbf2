// Package hackernews reads the top stories of the Hacker News firebase API.
package hackernews

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/internal/source"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"resty.dev/v3"
)

const displayName = "Hacker News"

type story struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
	Time  int64  `json:"time"`
}

type Source struct {
	http   *resty.Client
	top    int
	logger logger.Logger
}

var _ source.Source = (*Source)(nil)

func New(cfg *config.Config, log logger.Logger) *Source {
	return &Source{
		http: resty.New().
			SetBaseURL(cfg.Sources.HackerNewsURL).
			SetTimeout(15 * time.Second).
			AddResponseMiddleware(metrics.RestyMiddleware),
		top:    cfg.Sources.HackerNewsTop,
		logger: log.WithComponent("HackerNews"),
	}
}

func (s *Source) Name() string { return "hackernews" }

// Fetch lists the top story ids, then loads the first few one by one.
// Stories without a title or an outbound URL are dropped.
func (s *Source) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	var ids []int64
	res, err := s.http.R().WithContext(ctx).SetResult(&ids).Get("/topstories.json")
	if err != nil {
		return nil, fmt.Errorf("hacker news top stories failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("hacker news top stories: %s", res.Status())
	}

	if len(ids) > s.top {
		ids = ids[:s.top]
	}

	items := make([]domain.RawItem, 0, len(ids))
	for _, id := range ids {
		st, err := s.story(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			s.logger.Warn("Failed to load story", "id", id, "error", err)
			continue
		}
		if st.Title == "" || st.URL == "" {
			continue
		}

		body := source.CleanText(st.Text)
		if body == "" {
			body = st.Title
		}
		items = append(items, domain.RawItem{
			Title:       st.Title,
			Body:        body,
			Link:        st.URL,
			PublishedAt: time.Unix(st.Time, 0).UTC(),
			SourceName:  displayName,
		})
	}

	metrics.SourceItemsFetched.WithLabelValues("hackernews").Add(float64(len(items)))
	return items, nil
}

func (s *Source) story(ctx context.Context, id int64) (*story, error) {
	res, err := s.http.R().
		WithContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&story{}).
		Get("/item/{id}.json")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("item %d: %s", id, res.Status())
	}
	st, ok := res.Result().(*story)
	if !ok || st == nil {
		return nil, fmt.Errorf("item %d: empty response", id)
	}
	return st, nil
}

func (s *Source) Close() error {
	return s.http.Close()
}
