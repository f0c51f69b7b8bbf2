package domain

import "time"

type EngagementMetrics struct {
	Likes       int
	Shares      int
	Comments    int
	Retweets    int
	Impressions int
}

// Total is the sum of every interaction counted towards the engagement rate.
func (m EngagementMetrics) Total() int {
	return m.Likes + m.Shares + m.Comments + m.Retweets
}

// Analytics holds per (post, platform) engagement numbers.
type Analytics struct {
	ID       string
	PostID   string
	Platform Platform
	EngagementMetrics
	EngagementRate float64
	CreatedAt      time.Time
}

type TopPost struct {
	Title           string
	Platform        Platform
	EngagementRate  float64
	TotalEngagement int
}

type EngagementReport struct {
	TotalPosts            int
	TotalLikes            int
	TotalShares           int
	TotalComments         int
	AverageEngagementRate float64
	TopPerformingPosts    []TopPost
}
