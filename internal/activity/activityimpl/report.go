package activityimpl

import (
	"context"
	"sort"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/samber/lo"
)

const topPosts = 5

// Report aggregates the analytics rows of the last days.
func (i *Impl) Report(ctx context.Context, days int) (*domain.EngagementReport, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := i.analytics.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}
	totalPosts, err := i.posts.CountSince(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &domain.EngagementReport{
		TotalPosts:         totalPosts,
		TotalLikes:         lo.SumBy(rows, func(a *domain.Analytics) int { return a.Likes }),
		TotalShares:        lo.SumBy(rows, func(a *domain.Analytics) int { return a.Shares }),
		TotalComments:      lo.SumBy(rows, func(a *domain.Analytics) int { return a.Comments }),
		TopPerformingPosts: []domain.TopPost{},
	}
	if len(rows) > 0 {
		sum := lo.SumBy(rows, func(a *domain.Analytics) float64 { return a.EngagementRate })
		report.AverageEngagementRate = activity.Round2(sum / float64(len(rows)))
	}

	for postID, perPost := range lo.GroupBy(rows, func(a *domain.Analytics) string { return a.PostID }) {
		title := postID
		if p, err := i.posts.GetByID(ctx, postID); err == nil {
			title = p.Title
		}
		rate := lo.SumBy(perPost, func(a *domain.Analytics) float64 { return a.EngagementRate }) / float64(len(perPost))
		report.TopPerformingPosts = append(report.TopPerformingPosts, domain.TopPost{
			Title:           title,
			Platform:        perPost[0].Platform,
			EngagementRate:  activity.Round2(rate),
			TotalEngagement: lo.SumBy(perPost, func(a *domain.Analytics) int { return a.Total() }),
		})
	}

	sort.SliceStable(report.TopPerformingPosts, func(a, b int) bool {
		pa, pb := report.TopPerformingPosts[a], report.TopPerformingPosts[b]
		if pa.TotalEngagement != pb.TotalEngagement {
			return pa.TotalEngagement > pb.TotalEngagement
		}
		return pa.Title < pb.Title
	})
	if len(report.TopPerformingPosts) > topPosts {
		report.TopPerformingPosts = report.TopPerformingPosts[:topPosts]
	}

	return report, nil
}
