package publisherimpl

import (
	"context"
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/ai"
	"github.com/orgball2608/technews-autopilot/internal/browser"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/metrics"
	"github.com/orgball2608/technews-autopilot/internal/publisher"
	"github.com/orgball2608/technews-autopilot/internal/ratelimit"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/errors"
	"github.com/orgball2608/technews-autopilot/pkg/formatter"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config   *config.Config
	Sessions *browser.Manager
	AI       ai.Client
	Settings *settings.Settings
	Recorder activity.Recorder
	Logger   logger.Logger
}

type Impl struct {
	sessions *browser.Manager
	ai       ai.Client
	settings *settings.Settings
	recorder activity.Recorder
	spacing  ratelimit.Limiter[domain.Platform]
	logger   logger.Logger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d publisher.Delay) time.Duration
}

var _ publisher.Publisher = (*Impl)(nil)

func New(opts Opts) *Impl {
	return &Impl{
		sessions: opts.Sessions,
		ai:       opts.AI,
		settings: opts.Settings,
		recorder: opts.Recorder,
		spacing:  ratelimit.NewSpacing[domain.Platform](opts.Config.Engagement.MinSpacing),
		logger:   opts.Logger.WithComponent("Publisher"),
		sleep:    sleepContext,
		jitter:   randomDelay,
	}
}

func (i *Impl) Publish(ctx context.Context, platform domain.Platform, content string, post *domain.Post) error {
	session, err := i.sessions.Session(platform)
	if err != nil {
		return err
	}

	switch platform {
	case domain.PlatformTwitter:
		return i.publishTwitter(ctx, session, content, post)
	case domain.PlatformTelegram:
		text := fmt.Sprintf("%s\n\n%s\n\n🔗 %s", post.Title, content, post.OriginalURL)
		return i.publishLong(ctx, session, text, publisher.TelegramDelay)
	case domain.PlatformFacebook:
		text := fmt.Sprintf("%s\n\n%s\n\nRead more: %s", post.Title, content, post.OriginalURL)
		return i.publishLong(ctx, session, text, publisher.FacebookDelay)
	default:
		return errors.Wrap(errors.ErrUnsupported, fmt.Sprintf("platform %q", platform))
	}
}

func (i *Impl) publishLong(ctx context.Context, session *browser.Session, text string, delay publisher.Delay) error {
	if err := i.sleep(ctx, i.jitter(delay)); err != nil {
		return err
	}
	ref, err := session.Publish(ctx, browser.Message{Text: text})
	if err != nil {
		return errors.WrapWithCode(err, errors.CodePublish, fmt.Sprintf("%s delivery failed", session.Platform()))
	}
	i.logger.Info("Delivered post", "platform", session.Platform(), "ref", ref)
	return nil
}

func (i *Impl) publishTwitter(ctx context.Context, session *browser.Session, content string, post *domain.Post) error {
	limit := i.settings.TwitterCharacterLimit(ctx)
	if utf8.RuneCountInString(content) <= limit {
		if err := i.sleep(ctx, i.jitter(publisher.TwitterChunkDelay)); err != nil {
			return err
		}
		if _, err := session.Publish(ctx, browser.Message{Text: content}); err != nil {
			return errors.WrapWithCode(err, errors.CodePublish, "tweet failed")
		}
		return nil
	}

	chunks, err := i.ai.SplitIntoThread(ctx, content, limit)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodePublish, "thread split failed")
	}
	chunks = ai.NumberThread(chunks)

	var replyTo string
	for n, chunk := range chunks {
		if err := i.sleep(ctx, i.jitter(publisher.TwitterChunkDelay)); err != nil {
			return err
		}
		ref, err := session.Publish(ctx, browser.Message{Text: chunk, ReplyTo: replyTo})
		if err != nil {
			return errors.WrapWithCode(err, errors.CodePublish, fmt.Sprintf("thread tweet %d/%d failed", n+1, len(chunks)))
		}
		replyTo = ref
	}

	i.recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivityPost,
		Title:       "Auto-threaded Twitter post",
		Description: fmt.Sprintf("Posted %d tweets for: %s", len(chunks), post.Title),
		Metadata: map[string]any{
			"postId":      post.ID,
			"threadCount": len(chunks),
			"totalLength": utf8.RuneCountInString(content),
		},
	})
	return nil
}

func (i *Impl) Engage(ctx context.Context, action publisher.Action) error {
	err := i.engage(ctx, &action)

	entry := domain.EngagementLogEntry{
		Type:          action.Type,
		Platform:      action.Platform,
		TargetAccount: action.Target,
		TargetPostID:  action.TargetPostID,
		Content:       action.Content,
		Success:       err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
		i.logger.Warn("Engagement failed", "action", action.Type, "platform", action.Platform, "target", action.Target, "error", err)
	}
	i.recorder.LogEngagement(ctx, entry)
	i.recorder.Record(ctx, engagementActivity(action, err))
	metrics.EngagementActions.WithLabelValues(string(action.Platform), string(action.Type), outcome(err)).Inc()

	if err != nil {
		return errors.WrapWithCode(err, errors.CodeEngagement, fmt.Sprintf("%s @%s", action.Type, action.Target))
	}
	return nil
}

func (i *Impl) engage(ctx context.Context, action *publisher.Action) error {
	session, err := i.sessions.Session(action.Platform)
	if err != nil {
		return err
	}

	if action.Type == domain.EngagementComment && action.Content == "" {
		niche := action.Niche
		if niche == "" {
			niche = domain.DefaultNiche
		}
		comment, err := i.ai.GenerateComment(ctx, fmt.Sprintf("Latest %s post from @%s", niche, action.Target))
		if err != nil {
			return fmt.Errorf("comment generation failed: %w", err)
		}
		action.Content = comment
	}

	if err := i.spacing.Wait(ctx, action.Platform); err != nil {
		return err
	}
	if err := i.sleep(ctx, i.jitter(publisher.EngagementDelays[action.Type])); err != nil {
		return err
	}
	return session.Engage(ctx, action.Type, action.Target, action.Content)
}

func engagementActivity(action publisher.Action, err error) domain.ActivityEvent {
	metadata := map[string]any{
		"platform":      action.Platform,
		"action":        action.Type,
		"targetAccount": action.Target,
	}

	if err != nil {
		metadata["error"] = err.Error()
		return domain.ActivityEvent{
			Type:        domain.ActivityEngagement,
			Title:       "Auto-engagement failed",
			Description: fmt.Sprintf("Could not %s @%s", action.Type, action.Target),
			Metadata:    metadata,
		}
	}

	var description string
	switch action.Type {
	case domain.EngagementLike:
		description = fmt.Sprintf("Liked post from @%s", action.Target)
	case domain.EngagementRetweet:
		description = fmt.Sprintf("Retweeted post from @%s", action.Target)
	case domain.EngagementComment:
		description = fmt.Sprintf("Commented on @%s's post", action.Target)
		metadata["comment"] = formatter.Preview(action.Content, 50)
	case domain.EngagementReply:
		metadata["replyContent"] = formatter.Preview(action.Content, 100)
		return domain.ActivityEvent{
			Type:        domain.ActivityReply,
			Title:       "AI Reply Generated",
			Description: fmt.Sprintf("Replied to %s with contextual insight", action.Target),
			Metadata:    metadata,
		}
	}

	return domain.ActivityEvent{
		Type:        domain.ActivityEngagement,
		Title:       "Auto-engagement",
		Description: description,
		Metadata:    metadata,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomDelay(d publisher.Delay) time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)))
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
