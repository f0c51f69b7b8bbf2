// Package rss reads RSS and Atom feeds.
package rss

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/internal/source"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

const feedTimeout = 30 * time.Second

type Source struct {
	feeds        []string
	itemsPerFeed int
	workers      int
	recorder     activity.Recorder
	logger       logger.Logger
}

var _ source.Source = (*Source)(nil)

func New(cfg *config.Config, recorder activity.Recorder, log logger.Logger) *Source {
	return &Source{
		feeds:        cfg.Sources.RSSFeeds,
		itemsPerFeed: cfg.Sources.ItemsPerFeed,
		workers:      max(cfg.Sources.FeedWorkers, 1),
		recorder:     recorder,
		logger:       log.WithComponent("RSS"),
	}
}

func (s *Source) Name() string { return "rss" }

// Fetch reads every feed on a worker pool. A failing feed is recorded and
// skipped, so Fetch only fails when the pool cannot be created.
func (s *Source) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	if len(s.feeds) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(s.workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create feed pool: %w", err)
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		items []domain.RawItem
	)

	for _, feedURL := range s.feeds {
		feedURL := feedURL
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			got, err := s.fetchFeed(ctx, feedURL)
			if err != nil {
				s.feedFailed(ctx, feedURL, err)
				return
			}

			mu.Lock()
			items = append(items, got...)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			s.feedFailed(ctx, feedURL, err)
		}
	}
	wg.Wait()

	return items, nil
}

func (s *Source) fetchFeed(ctx context.Context, feedURL string) ([]domain.RawItem, error) {
	ctx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	feed, err := gofeed.NewParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", feedURL, err)
	}

	name := source.NameFromURL(feedURL)
	now := time.Now().UTC()

	items := make([]domain.RawItem, 0, min(len(feed.Items), s.itemsPerFeed))
	for _, entry := range feed.Items {
		if len(items) >= s.itemsPerFeed {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}

		body := entry.Description
		if body == "" {
			body = entry.Content
		}
		if body == "" {
			body = entry.Title
		}

		published := now
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		items = append(items, domain.RawItem{
			Title:       source.CleanText(entry.Title),
			Body:        source.CleanText(body),
			Link:        entry.Link,
			PublishedAt: published,
			SourceName:  name,
		})
	}

	metrics.SourceItemsFetched.WithLabelValues(name).Add(float64(len(items)))
	s.logger.Debug("Feed fetched", "feed", feedURL, "items", len(items))
	return items, nil
}

func (s *Source) feedFailed(ctx context.Context, feedURL string, err error) {
	metrics.SourceFailures.WithLabelValues(source.NameFromURL(feedURL)).Inc()
	s.logger.Error("Failed to fetch feed", "feed", feedURL, "error", err)
	s.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityRSSUpdate,
		Title:       "RSS Feed Error",
		Description: fmt.Sprintf("Failed to fetch from %s", feedURL),
		Metadata:    map[string]any{"source": feedURL, "error": err.Error()},
	})
}
