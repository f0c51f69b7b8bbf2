package domain

import "time"

type QueueStatus string

const (
	QueueStatusScheduled  QueueStatus = "scheduled"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusPosted     QueueStatus = "posted"
	QueueStatusFailed     QueueStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s QueueStatus) Terminal() bool {
	return s == QueueStatusPosted || s == QueueStatusFailed
}

// CanTransition enforces scheduled -> processing -> {posted, failed}.
func (s QueueStatus) CanTransition(next QueueStatus) bool {
	switch s {
	case QueueStatusScheduled:
		return next == QueueStatusProcessing
	case QueueStatusProcessing:
		return next == QueueStatusPosted || next == QueueStatusFailed
	default:
		return false
	}
}

// QueueItem binds one post to one platform at a scheduled time.
type QueueItem struct {
	ID           string
	PostID       string
	Platform     Platform
	ScheduledFor time.Time
	Status       QueueStatus
	RetryCount   int
	Error        string
	CreatedAt    time.Time
}
