package domain

import "time"

type EngagementType string

const (
	EngagementLike    EngagementType = "like"
	EngagementRetweet EngagementType = "retweet"
	EngagementComment EngagementType = "comment"
	EngagementReply   EngagementType = "reply"
)

// TargetAccount is an external account we engage with.
type TargetAccount struct {
	ID        string
	Platform  Platform
	Username  string
	Type      EngagementType
	Niche     string
	IsActive  bool
	CreatedAt time.Time
}

// EngagementLogEntry records one attempted engagement action.
type EngagementLogEntry struct {
	ID            string
	Type          EngagementType
	Platform      Platform
	TargetAccount string
	TargetPostID  string
	Content       string
	Success       bool
	Error         string
	CreatedAt     time.Time
}
