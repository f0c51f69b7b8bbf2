package aggregatorimpl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/aggregator"
	"github.com/orgball2608/technews-autopilot/internal/dedup"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/repositories/post"
	"github.com/orgball2608/technews-autopilot/internal/source"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	Config   *config.Config
	Sources  []source.Source
	Posts    post.Repository
	Queue    queue.Queue
	Recorder activity.Recorder
	Logger   logger.Logger
}

type Impl struct {
	sources      []source.Source
	posts        post.Repository
	queue        queue.Queue
	recorder     activity.Recorder
	filter       *dedup.Filter
	platforms    []domain.Platform
	autoSchedule bool
	postDelay    time.Duration
	logger       logger.Logger

	running sync.Mutex
}

var _ aggregator.Aggregator = (*Impl)(nil)

func New(opts Opts) *Impl {
	return &Impl{
		sources:      opts.Sources,
		posts:        opts.Posts,
		queue:        opts.Queue,
		recorder:     opts.Recorder,
		filter:       dedup.New(),
		platforms:    lo.Uniq(domain.ParsePlatforms(opts.Config.Schedule.Platforms)),
		autoSchedule: opts.Config.Schedule.AutoSchedule,
		postDelay:    opts.Config.Schedule.PostDelay,
		logger:       opts.Logger.WithComponent("Aggregator"),
	}
}

type fetchResult struct {
	source source.Source
	items  []domain.RawItem
	err    error
}

func (i *Impl) Aggregate(ctx context.Context) (aggregator.Result, error) {
	if !i.running.TryLock() {
		i.logger.Debug("Aggregation already running, skipping")
		return aggregator.Result{Skipped: true}, nil
	}
	defer i.running.Unlock()

	var res aggregator.Result

	fetched := i.fetchAll(ctx)

	var items []domain.RawItem
	for _, f := range fetched {
		if f.err != nil {
			res.FailedSources = append(res.FailedSources, f.source.Name())
			i.sourceFailed(ctx, f.source.Name(), f.err)
			continue
		}
		items = append(items, f.items...)
	}
	res.Fetched = len(items)

	recent, err := i.posts.GetRecent(ctx, dedup.RecentWindow)
	if err != nil {
		i.aggregationFailed(ctx, err)
		return res, errors.Wrap(err, "load recent posts")
	}
	titles := lo.Map(recent, func(p *domain.Post, _ int) string { return p.Title })

	accepted, rejected := i.filter.Filter(items, titles)
	res.Rejected = len(rejected)
	metrics.ItemsFiltered.WithLabelValues("accepted").Add(float64(len(accepted)))
	metrics.ItemsFiltered.WithLabelValues("rejected").Add(float64(len(rejected)))
	if len(rejected) > 0 {
		i.recorder.Record(ctx, domain.ActivityEvent{
			Type:        domain.ActivityFilter,
			Title:       "Content Filtered",
			Description: fmt.Sprintf("Dropped %d duplicate or low quality items", len(rejected)),
			Metadata: map[string]any{
				"rejected": len(rejected),
				"reasons":  lo.CountValuesBy(rejected, func(r dedup.Rejection) string { return r.Reason }),
			},
		})
	}

	for _, item := range accepted {
		if ctx.Err() != nil {
			break
		}

		created, err := i.createPost(ctx, item)
		if err != nil {
			i.logger.Error("Failed to store post", "title", item.Title, "error", err)
			continue
		}
		res.Created++

		if !i.autoSchedule {
			continue
		}
		if _, err := i.queue.Schedule(ctx, created, i.postDelay); err != nil {
			i.logger.Error("Failed to schedule post", "post_id", created.ID, "error", err)
			continue
		}
		res.Scheduled++
	}

	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityRSSUpdate,
		Title:       "Content Aggregation Complete",
		Description: fmt.Sprintf("Fetched %d items, %d new posts created", res.Fetched, res.Created),
		Metadata: map[string]any{
			"totalFetched":  res.Fetched,
			"newPosts":      res.Created,
			"filtered":      res.Rejected,
			"sources":       lo.Map(i.sources, func(s source.Source, _ int) string { return s.Name() }),
			"failedSources": res.FailedSources,
		},
	})

	i.logger.Info("Aggregation finished",
		"fetched", res.Fetched,
		"rejected", res.Rejected,
		"created", res.Created,
		"scheduled", res.Scheduled,
		"failed_sources", len(res.FailedSources))

	return res, ctx.Err()
}

// fetchAll runs every source in its own goroutine. A panicking source
// counts as a failed one.
func (i *Impl) fetchAll(ctx context.Context) []fetchResult {
	results := make([]fetchResult, len(i.sources))

	var wg sync.WaitGroup
	for idx, src := range i.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[idx] = fetchResult{source: src, err: fmt.Errorf("source panicked: %v", r)}
				}
			}()

			items, err := src.Fetch(ctx)
			results[idx] = fetchResult{source: src, items: items, err: err}
		}()
	}
	wg.Wait()

	return results
}

func (i *Impl) createPost(ctx context.Context, item domain.RawItem) (*domain.Post, error) {
	similarity := item.Similarity
	p, err := i.posts.Create(ctx, domain.Post{
		Title:       item.Title,
		Content:     item.Body,
		OriginalURL: item.Link,
		Source:      item.SourceName,
		Platforms:   i.platforms,
		Status:      domain.PostStatusPending,
		Niche:       domain.DefaultNiche,
		Similarity:  &similarity,
	})
	if err != nil {
		return nil, err
	}

	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityPost,
		Title:       "New content aggregated",
		Description: p.Title,
		Metadata: map[string]any{
			"postId": p.ID,
			"source": p.Source,
			"url":    p.OriginalURL,
		},
	})
	return p, nil
}

func (i *Impl) sourceFailed(ctx context.Context, name string, err error) {
	err = errors.WrapWithCode(err, errors.CodeSourceFetch, name)
	metrics.SourceFailures.WithLabelValues(name).Inc()
	i.logger.Error("Content source failed", "source", name, "error", err)
	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityRSSUpdate,
		Title:       "Content Source Failed",
		Description: fmt.Sprintf("Failed to fetch from %s", name),
		Metadata:    map[string]any{"source": name, "error": err.Error()},
	})
}

func (i *Impl) aggregationFailed(ctx context.Context, err error) {
	i.logger.Error("Content aggregation failed", "error", err)
	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityRSSUpdate,
		Title:       "Content Aggregation Failed",
		Description: err.Error(),
		Metadata:    map[string]any{"error": err.Error()},
	})
}
