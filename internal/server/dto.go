package server

import (
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/samber/lo"
)

type postResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	ProcessedContent string            `json:"processedContent,omitempty"`
	OriginalURL      string            `json:"originalUrl"`
	Source           string            `json:"source"`
	Platforms        []domain.Platform `json:"platforms"`
	Status           domain.PostStatus `json:"status"`
	AIProcessed      bool              `json:"aiProcessed"`
	Niche            string            `json:"niche"`
	Similarity       *float64          `json:"similarity,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	PostedAt         *time.Time        `json:"postedAt,omitempty"`
}

func toPost(p *domain.Post) postResponse {
	return postResponse{
		ID:               p.ID,
		Title:            p.Title,
		Content:          p.Content,
		ProcessedContent: p.ProcessedContent,
		OriginalURL:      p.OriginalURL,
		Source:           p.Source,
		Platforms:        p.Platforms,
		Status:           p.Status,
		AIProcessed:      p.AIProcessed,
		Niche:            p.Niche,
		Similarity:       p.Similarity,
		CreatedAt:        p.CreatedAt,
		PostedAt:         p.PostedAt,
	}
}

type queueItemResponse struct {
	ID           string             `json:"id"`
	PostID       string             `json:"postId"`
	Platform     domain.Platform    `json:"platform"`
	ScheduledFor time.Time          `json:"scheduledFor"`
	Status       domain.QueueStatus `json:"status"`
	RetryCount   int                `json:"retryCount"`
	Error        string             `json:"error,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func toQueueItem(q *domain.QueueItem) queueItemResponse {
	return queueItemResponse{
		ID:           q.ID,
		PostID:       q.PostID,
		Platform:     q.Platform,
		ScheduledFor: q.ScheduledFor,
		Status:       q.Status,
		RetryCount:   q.RetryCount,
		Error:        q.Error,
		CreatedAt:    q.CreatedAt,
	}
}

type activityResponse struct {
	ID          string              `json:"id"`
	Type        domain.ActivityType `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func toActivity(a *domain.ActivityEvent) activityResponse {
	return activityResponse{
		ID:          a.ID,
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
	}
}

type engagementResponse struct {
	ID            string                `json:"id"`
	Type          domain.EngagementType `json:"type"`
	Platform      domain.Platform       `json:"platform"`
	TargetAccount string                `json:"targetAccount"`
	TargetPostID  string                `json:"targetPostId,omitempty"`
	Content       string                `json:"content,omitempty"`
	Success       bool                  `json:"success"`
	Error         string                `json:"error,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func toEngagement(e *domain.EngagementLogEntry) engagementResponse {
	return engagementResponse{
		ID:            e.ID,
		Type:          e.Type,
		Platform:      e.Platform,
		TargetAccount: e.TargetAccount,
		TargetPostID:  e.TargetPostID,
		Content:       e.Content,
		Success:       e.Success,
		Error:         e.Error,
		CreatedAt:     e.CreatedAt,
	}
}

type topPostResponse struct {
	Title           string          `json:"title"`
	Platform        domain.Platform `json:"platform"`
	EngagementRate  float64         `json:"engagementRate"`
	TotalEngagement int             `json:"totalEngagement"`
}

type reportResponse struct {
	TotalPosts            int               `json:"totalPosts"`
	TotalLikes            int               `json:"totalLikes"`
	TotalShares           int               `json:"totalShares"`
	TotalComments         int               `json:"totalComments"`
	AverageEngagementRate float64           `json:"averageEngagementRate"`
	TopPerformingPosts    []topPostResponse `json:"topPerformingPosts"`
}

func toReport(r *domain.EngagementReport) reportResponse {
	return reportResponse{
		TotalPosts:            r.TotalPosts,
		TotalLikes:            r.TotalLikes,
		TotalShares:           r.TotalShares,
		TotalComments:         r.TotalComments,
		AverageEngagementRate: r.AverageEngagementRate,
		TopPerformingPosts: lo.Map(r.TopPerformingPosts, func(p domain.TopPost, _ int) topPostResponse {
			return topPostResponse(p)
		}),
	}
}

type targetResponse struct {
	ID        string                `json:"id"`
	Platform  domain.Platform       `json:"platform"`
	Username  string                `json:"username"`
	Type      domain.EngagementType `json:"type"`
	Niche     string                `json:"niche"`
	IsActive  bool                  `json:"isActive"`
	CreatedAt time.Time             `json:"createdAt"`
}

func toTarget(t *domain.TargetAccount) targetResponse {
	return targetResponse(*t)
}

func mapAll[T, R any](in []*T, f func(*T) R) []R {
	return lo.Map(in, func(v *T, _ int) R { return f(v) })
}
