package domain

import "time"

type ActivityType string

const (
	ActivityPost         ActivityType = "post"
	ActivityAIProcessing ActivityType = "ai_processing"
	ActivityEngagement   ActivityType = "engagement"
	ActivityReply        ActivityType = "reply"
	ActivityRSSUpdate    ActivityType = "rss_update"
	ActivitySystem       ActivityType = "system"
	ActivityFilter       ActivityType = "filter"
)

// ActivityEvent is an append-only dashboard log entry.
type ActivityEvent struct {
	ID          string
	Type        ActivityType
	Title       string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}
