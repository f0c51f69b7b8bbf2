package queueimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/ai"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/internal/publisher"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	postrepo "github.com/orgball2608/technews-autopilot/internal/repositories/post"
	queuerepo "github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

const (
	drainBatch = 50
	// settleTimeout bounds the writes that move a claimed item to a
	// terminal status once the drain context is gone.
	settleTimeout = 10 * time.Second
)

type Opts struct {
	fx.In

	Config      *config.Config
	Items       queuerepo.Repository
	Posts       postrepo.Repository
	AI          ai.Client
	Publisher   publisher.Publisher
	Recorder    activity.Recorder
	Settings    *settings.Settings
	Broadcaster realtime.Broadcaster
	Logger      logger.Logger
}

type Impl struct {
	items       queuerepo.Repository
	posts       postrepo.Repository
	ai          ai.Client
	publisher   publisher.Publisher
	recorder    activity.Recorder
	settings    *settings.Settings
	broadcaster realtime.Broadcaster
	logger      logger.Logger

	workers     int
	maxRequeues int

	draining  sync.Mutex
	postLocks *keyedMutex
	now       func() time.Time
}

var _ queue.Queue = (*Impl)(nil)

func New(opts Opts) *Impl {
	workers := opts.Config.Queue.Workers
	if workers < 1 {
		workers = 1
	}
	b := opts.Broadcaster
	if b == nil {
		b = realtime.Nop{}
	}
	return &Impl{
		items:       opts.Items,
		posts:       opts.Posts,
		ai:          opts.AI,
		publisher:   opts.Publisher,
		recorder:    opts.Recorder,
		settings:    opts.Settings,
		broadcaster: b,
		logger:      opts.Logger.WithComponent("Queue"),
		workers:     workers,
		maxRequeues: opts.Config.Queue.MaxRequeues,
		postLocks:   newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (i *Impl) Schedule(ctx context.Context, post *domain.Post, delay time.Duration) ([]*domain.QueueItem, error) {
	scheduledFor := i.now().Add(delay)

	items := make([]*domain.QueueItem, 0, len(post.Platforms))
	for _, platform := range post.Platforms {
		item, err := i.items.Create(ctx, domain.QueueItem{
			PostID:       post.ID,
			Platform:     platform,
			ScheduledFor: scheduledFor,
			Status:       domain.QueueStatusScheduled,
		})
		if err != nil {
			return items, fmt.Errorf("failed to schedule post %s on %s: %w", post.ID, platform, err)
		}
		items = append(items, item)
		i.broadcaster.Broadcast(activity.EventQueue, item)
	}

	i.logger.Info("Post scheduled", "post_id", post.ID, "platforms", len(items), "scheduled_for", scheduledFor)
	return items, nil
}

func (i *Impl) Drain(ctx context.Context) (queue.DrainResult, error) {
	if !i.draining.TryLock() {
		i.logger.Debug("Drain already running, skipping")
		return queue.DrainResult{Skipped: true}, nil
	}
	defer i.draining.Unlock()

	if i.settings.EmergencyStopped(ctx) {
		i.logger.Warn("Emergency stop active, queue drain skipped")
		return queue.DrainResult{Stopped: true}, nil
	}

	due, err := i.items.ListDue(ctx, i.now(), drainBatch)
	if err != nil {
		return queue.DrainResult{}, fmt.Errorf("failed to list due items: %w", err)
	}
	if len(due) == 0 {
		return queue.DrainResult{}, nil
	}
	i.logger.Info("Draining queue", "due", len(due), "workers", i.workers)

	var (
		mu     sync.Mutex
		result = queue.DrainResult{Due: len(due)}
	)
	tally := func(status domain.QueueStatus) {
		mu.Lock()
		defer mu.Unlock()
		switch status {
		case domain.QueueStatusPosted:
			result.Posted++
		case domain.QueueStatusFailed:
			result.Failed++
		}
	}
	halted := func() bool {
		if !i.settings.EmergencyStopped(ctx) {
			return false
		}
		mu.Lock()
		result.Stopped = true
		mu.Unlock()
		return true
	}

	if i.workers == 1 {
		for _, item := range due {
			if halted() {
				break
			}
			tally(i.process(ctx, item))
		}
		return result, nil
	}

	pool, err := ants.NewPool(i.workers, ants.WithPanicHandler(func(p any) {
		i.logger.Error("Queue worker panicked", "panic", p)
	}))
	if err != nil {
		return queue.DrainResult{}, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, item := range due {
		item := item
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if halted() {
				return
			}
			tally(i.process(ctx, item))
		}); err != nil {
			wg.Done()
			i.logger.Error("Failed to submit queue item", "item_id", item.ID, "error", err)
		}
	}
	wg.Wait()

	return result, nil
}

// process runs one item to a terminal status and returns it.
// An empty status means the item was claimed by somebody else.
func (i *Impl) process(ctx context.Context, item *domain.QueueItem) domain.QueueStatus {
	err := i.items.Transition(ctx, item.ID, domain.QueueStatusScheduled, domain.QueueStatusProcessing, "")
	if errors.Is(err, queuerepo.ErrStaleStatus) {
		i.logger.Debug("Item already claimed", "item_id", item.ID)
		return ""
	}
	if err != nil {
		i.logger.Error("Failed to claim item", "item_id", item.ID, "error", err)
		return ""
	}

	// Once claimed the item must reach a terminal status even when the drain
	// is cancelled or times out.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	post, err := i.posts.GetByID(ctx, item.PostID)
	if errors.Is(err, postrepo.ErrNotFound) {
		i.fail(settleCtx, item, "post not found")
		return domain.QueueStatusFailed
	}
	if err != nil {
		i.fail(settleCtx, item, fmt.Sprintf("failed to load post: %v", err))
		i.settlePost(settleCtx, item.PostID, nil)
		return domain.QueueStatusFailed
	}

	content := i.ensureRewritten(ctx, post)

	if err := i.publisher.Publish(ctx, item.Platform, content.text, content.post); err != nil {
		i.logger.Warn("Delivery failed", "item_id", item.ID, "platform", item.Platform, "post_id", post.ID, "error", err)
		i.fail(settleCtx, item, err.Error())
		i.settlePost(settleCtx, post.ID, nil)
		return domain.QueueStatusFailed
	}

	i.succeed(settleCtx, item, content.post, content.text)
	return domain.QueueStatusPosted
}

type rewritten struct {
	post *domain.Post
	text string
}

// ensureRewritten serialises the processed check and the rewrite per post so
// that items of the same post on different platforms share one rewrite.
func (i *Impl) ensureRewritten(ctx context.Context, post *domain.Post) rewritten {
	unlock := i.postLocks.Lock(post.ID)
	defer unlock()

	if fresh, err := i.posts.GetByID(ctx, post.ID); err == nil {
		post = fresh
	} else {
		i.logger.Warn("Failed to reload post, using loaded copy", "post_id", post.ID, "error", err)
	}
	if post.AIProcessed {
		return rewritten{post: post, text: post.PublishableContent()}
	}

	text, err := i.ai.Rewrite(ctx, post.Title, post.Content)
	if err != nil {
		i.logger.Warn("Rewrite failed, using original content", "post_id", post.ID, "error", err)
		i.recorder.Record(ctx, domain.ActivityEvent{
			Type:        domain.ActivityAIProcessing,
			Title:       "AI Processing Failed",
			Description: fmt.Sprintf("Failed to process: %q", post.Title),
			Metadata:    map[string]any{"postId": post.ID, "error": err.Error()},
		})
		return rewritten{post: post, text: post.Content}
	}

	processed := true
	if err := i.posts.Update(ctx, post.ID, domain.PostUpdate{ProcessedContent: &text, AIProcessed: &processed}); err != nil {
		i.logger.Error("Failed to store rewritten content", "post_id", post.ID, "error", err)
	} else {
		post.ProcessedContent, post.AIProcessed = text, true
	}

	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityAIProcessing,
		Title:       "Content AI Processed",
		Description: fmt.Sprintf("Rephrased: %q", post.Title),
		Metadata: map[string]any{
			"postId":          post.ID,
			"originalLength":  len([]rune(post.Content)),
			"processedLength": len([]rune(text)),
		},
	})
	return rewritten{post: post, text: text}
}

func (i *Impl) succeed(ctx context.Context, item *domain.QueueItem, post *domain.Post, content string) {
	if err := i.items.Transition(ctx, item.ID, domain.QueueStatusProcessing, domain.QueueStatusPosted, ""); err != nil {
		i.logger.Error("Failed to mark item posted", "item_id", item.ID, "error", err)
	}
	metrics.QueueItems.WithLabelValues(string(item.Platform), string(domain.QueueStatusPosted)).Inc()

	now := i.now()
	i.settlePost(ctx, post.ID, &now)

	i.recorder.RecordAnalytics(ctx, post.ID, item.Platform, domain.EngagementMetrics{})
	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityPost,
		Title:       fmt.Sprintf("Posted to %s", item.Platform),
		Description: post.Title,
		Metadata: map[string]any{
			"postId":        post.ID,
			"platform":      item.Platform,
			"contentLength": len([]rune(content)),
		},
	})

	item.Status = domain.QueueStatusPosted
	i.broadcaster.Broadcast(activity.EventPost, item)
	i.logger.Info("Item posted", "item_id", item.ID, "post_id", post.ID, "platform", item.Platform)
}

func (i *Impl) fail(ctx context.Context, item *domain.QueueItem, reason string) {
	if err := i.items.Transition(ctx, item.ID, domain.QueueStatusProcessing, domain.QueueStatusFailed, reason); err != nil {
		i.logger.Error("Failed to mark item failed", "item_id", item.ID, "error", err)
	}
	metrics.QueueItems.WithLabelValues(string(item.Platform), string(domain.QueueStatusFailed)).Inc()

	item.Status, item.Error = domain.QueueStatusFailed, reason
	i.broadcaster.Broadcast(activity.EventQueue, item)
	i.logger.Warn("Item failed", "item_id", item.ID, "post_id", item.PostID, "reason", reason)
}

// postStatus derives a post's status from its items: posted once any item
// is posted, failed once all are terminal, pending otherwise.
func postStatus(items []*domain.QueueItem) domain.PostStatus {
	settled := true
	for _, it := range items {
		if it.Status == domain.QueueStatusPosted {
			return domain.PostStatusPosted
		}
		if !it.Status.Terminal() {
			settled = false
		}
	}
	if settled && len(items) > 0 {
		return domain.PostStatusFailed
	}
	return domain.PostStatusPending
}

// settlePost writes the status derived from the post's items. postedAt is
// stored only when the post ends up posted. Settles of one post are
// serialised so the last write sees every earlier transition.
func (i *Impl) settlePost(ctx context.Context, postID string, postedAt *time.Time) {
	unlock := i.postLocks.Lock(postID)
	defer unlock()

	items, err := i.items.ListByPost(ctx, postID)
	if err != nil {
		i.logger.Error("Failed to list post items", "post_id", postID, "error", err)
		return
	}

	status := postStatus(items)
	update := domain.PostUpdate{Status: &status}
	if status == domain.PostStatusPosted {
		update.PostedAt = postedAt
	}
	err = i.posts.Update(ctx, postID, update)
	if err != nil && !errors.Is(err, postrepo.ErrNotFound) {
		i.logger.Error("Failed to settle post status", "post_id", postID, "status", status, "error", err)
	}
}

func (i *Impl) Requeue(ctx context.Context, itemID string) (*domain.QueueItem, error) {
	item, err := i.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.QueueStatusFailed {
		return nil, queue.ErrNotRequeueable
	}
	if item.RetryCount+1 > i.maxRequeues {
		return nil, fmt.Errorf("%w: item %s was retried %d times", queue.ErrRequeueLimit, item.ID, item.RetryCount)
	}

	fresh, err := i.items.Create(ctx, domain.QueueItem{
		PostID:       item.PostID,
		Platform:     item.Platform,
		ScheduledFor: i.now(),
		Status:       domain.QueueStatusScheduled,
		RetryCount:   item.RetryCount + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to requeue item %s: %w", item.ID, err)
	}

	i.settlePost(ctx, item.PostID, nil)

	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivitySystem,
		Title:       "Queue item requeued",
		Description: fmt.Sprintf("Retry %d of %s delivery", fresh.RetryCount, fresh.Platform),
		Metadata:    map[string]any{"itemId": fresh.ID, "previousItemId": item.ID, "postId": item.PostID},
	})
	i.broadcaster.Broadcast(activity.EventQueue, fresh)
	return fresh, nil
}
