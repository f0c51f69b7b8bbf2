// Package newsapi queries the newsapi.org everything endpoint.
package newsapi

import (
	"context"
	"encoding/json"
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

const sourceName = "newsapi"

type article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type response struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

type Source struct {
	http     *resty.Client
	apiKey   string
	query    string
	pageSize int
	logger   logger.Logger
}

var _ source.Source = (*Source)(nil)

func New(cfg *config.Config, log logger.Logger) *Source {
	return &Source{
		http: resty.New().
			SetBaseURL(cfg.Sources.NewsAPIURL).
			SetTimeout(30 * time.Second).
			AddResponseMiddleware(metrics.RestyMiddleware),
		apiKey:   cfg.Sources.NewsAPIKey,
		query:    cfg.Sources.NewsAPIQuery,
		pageSize: cfg.Sources.NewsAPIPageSize,
		logger:   log.WithComponent("NewsAPI"),
	}
}

func (s *Source) Name() string { return sourceName }

// Fetch returns nothing, without error, when no API key is configured.
func (s *Source) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	if s.apiKey == "" {
		s.logger.Debug("NEWS_API_KEY not set, skipping")
		return nil, nil
	}

	res, err := s.http.R().
		WithContext(ctx).
		SetHeader("X-Api-Key", s.apiKey).
		SetQueryParams(map[string]string{
			"q":        s.query,
			"sortBy":   "publishedAt",
			"language": "en",
			"pageSize": strconv.Itoa(s.pageSize),
		}).
		SetResult(&response{}).
		Get("/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("newsapi request failed: %w", err)
	}
	if res.IsError() {
		msg := res.Status()
		var e response
		if json.Unmarshal([]byte(res.String()), &e) == nil && e.Message != "" {
			msg = e.Message
		}
		return nil, fmt.Errorf("newsapi error: %s", msg)
	}

	body, ok := res.Result().(*response)
	if !ok {
		return nil, fmt.Errorf("invalid response from newsapi")
	}

	items := make([]domain.RawItem, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		items = append(items, domain.RawItem{
			Title:       source.CleanText(a.Title),
			Body:        source.CleanText(a.Description),
			Link:        a.URL,
			PublishedAt: a.PublishedAt,
			SourceName:  a.Source.Name,
		})
	}

	metrics.SourceItemsFetched.WithLabelValues(sourceName).Add(float64(len(items)))
	return items, nil
}

func (s *Source) Close() error {
	return s.http.Close()
}
