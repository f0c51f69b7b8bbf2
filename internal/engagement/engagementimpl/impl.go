package engagementimpl

import (
	"context"

	"github.com/orgball2608/technews-autopilot/internal/ai"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/engagement"
	"github.com/orgball2608/technews-autopilot/internal/publisher"
	engagementrepo "github.com/orgball2608/technews-autopilot/internal/repositories/engagement"
	"github.com/orgball2608/technews-autopilot/internal/repositories/target"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

const (
	// sweepWindow is how many recent log entries are scanned for unanswered comments.
	sweepWindow = 10
	// repliedWindow is how far back existing replies are looked up.
	repliedWindow = 200
)

type Opts struct {
	fx.In
	Config      *config.Config
	Targets     target.Repository
	Engagements engagementrepo.Repository
	Publisher   publisher.Publisher
	AI          ai.Client
	Settings    *settings.Settings
	Logger      logger.Logger
}

type Impl struct {
	targets     target.Repository
	engagements engagementrepo.Repository
	publisher   publisher.Publisher
	ai          ai.Client
	settings    *settings.Settings
	caps        map[domain.EngagementType]int
	logger      logger.Logger
	// pick chooses n targets out of the active ones. Swapped in tests.
	pick func(targets []*domain.TargetAccount, n int) []*domain.TargetAccount
}

var _ engagement.Engager = (*Impl)(nil)

func New(opts Opts) *Impl {
	return &Impl{
		targets:     opts.Targets,
		engagements: opts.Engagements,
		publisher:   opts.Publisher,
		ai:          opts.AI,
		settings:    opts.Settings,
		caps: map[domain.EngagementType]int{
			domain.EngagementLike:    opts.Config.Engagement.LikesPerCycle,
			domain.EngagementRetweet: opts.Config.Engagement.RetweetsPerCycle,
			domain.EngagementComment: opts.Config.Engagement.CommentsPerCycle,
		},
		logger: opts.Logger.WithComponent("Engagement"),
		pick:   sample,
	}
}

func sample(targets []*domain.TargetAccount, n int) []*domain.TargetAccount {
	return lo.Samples(targets, n)
}

// cycleOrder fixes the order in which action types run inside a cycle.
var cycleOrder = []domain.EngagementType{
	domain.EngagementLike,
	domain.EngagementRetweet,
	domain.EngagementComment,
}

func (i *Impl) Cycle(ctx context.Context) (engagement.CycleResult, error) {
	var res engagement.CycleResult

	if i.settings.EmergencyStopped(ctx) {
		i.logger.Info("Emergency stop active, skipping engagement cycle")
		res.Skipped = true
		return res, nil
	}
	if !i.settings.AutoEngagementEnabled(ctx) {
		i.logger.Debug("Auto engagement disabled, skipping cycle")
		res.Skipped = true
		return res, nil
	}

	for _, typ := range cycleOrder {
		limit := i.caps[typ]
		if limit <= 0 {
			continue
		}

		active, err := i.targets.ListActive(ctx, domain.PlatformTwitter, typ)
		if err != nil {
			return res, err
		}

		for _, t := range i.pick(active, limit) {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			// actions are minutes apart, so the switch is re-read before each one
			if i.settings.EmergencyStopped(ctx) {
				i.logger.Info("Emergency stop raised mid-cycle", "attempted", res.Attempted)
				return res, nil
			}

			res.Attempted++
			err := i.publisher.Engage(ctx, publisher.Action{
				Type:     typ,
				Platform: t.Platform,
				Target:   t.Username,
				Niche:    t.Niche,
			})
			if err != nil {
				continue
			}
			res.Succeeded++
		}
	}

	i.logger.Info("Engagement cycle finished", "attempted", res.Attempted, "succeeded", res.Succeeded)
	return res, nil
}

func (i *Impl) ReplySweep(ctx context.Context) (int, error) {
	if i.settings.EmergencyStopped(ctx) {
		i.logger.Info("Emergency stop active, skipping reply sweep")
		return 0, nil
	}

	recent, err := i.engagements.GetRecent(ctx, repliedWindow)
	if err != nil {
		return 0, err
	}

	replied := make(map[string]struct{})
	for _, e := range recent {
		if e.Type == domain.EngagementReply && e.Success {
			replied[replyKey(e)] = struct{}{}
		}
	}

	pending := lo.Filter(lo.Subset(recent, 0, sweepWindow), func(e *domain.EngagementLogEntry, _ int) bool {
		if e.Type != domain.EngagementComment || e.Content != "" || !e.Success {
			return false
		}
		_, done := replied[replyKey(e)]
		return !done
	})

	sent := 0
	for _, comment := range pending {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		commentText := comment.TargetPostID
		if commentText == "" {
			commentText = "Comment content"
		}
		reply, err := i.ai.GenerateReply(ctx, "Tech news post content", commentText)
		if err != nil {
			i.logger.Warn("Failed to generate reply", "account", comment.TargetAccount, "error", err)
			continue
		}

		err = i.publisher.Engage(ctx, publisher.Action{
			Type:         domain.EngagementReply,
			Platform:     comment.Platform,
			Target:       comment.TargetAccount,
			TargetPostID: comment.TargetPostID,
			Content:      reply,
		})
		if err != nil {
			continue
		}
		replied[replyKey(comment)] = struct{}{}
		sent++
	}

	if len(pending) > 0 {
		i.logger.Info("Reply sweep finished", "pending", len(pending), "sent", sent)
	}
	return sent, nil
}

// replyKey matches a reply to the comment it answers.
func replyKey(e *domain.EngagementLogEntry) string {
	return string(e.Platform) + "/" + e.TargetAccount + "/" + e.TargetPostID
}
