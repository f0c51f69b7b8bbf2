package activity

import (
	"context"
	"math"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

// Event types pushed to dashboard listeners.
const (
	EventActivity   = "activity"
	EventEngagement = "engagement"
	EventPost       = "post_published"
	EventQueue      = "queue_update"
	EventSystem     = "system"
)

//go:generate go run go.uber.org/mock/mockgen -source=activity.go -destination=mocks/mock.go
type Recorder interface {
	// Record appends an activity event. Storage failures are logged, never returned.
	Record(ctx context.Context, event domain.ActivityEvent)

	// LogEngagement appends an engagement log entry. Storage failures are logged, never returned.
	LogEngagement(ctx context.Context, entry domain.EngagementLogEntry)

	// RecordAnalytics creates the analytics row for a delivered (post, platform) pair.
	RecordAnalytics(ctx context.Context, postID string, platform domain.Platform, m domain.EngagementMetrics)

	// UpdateAnalytics refreshes metrics of an existing row, creating it when missing.
	UpdateAnalytics(ctx context.Context, postID string, platform domain.Platform, m domain.EngagementMetrics) error

	Recent(ctx context.Context, limit int) ([]*domain.ActivityEvent, error)

	Report(ctx context.Context, days int) (*domain.EngagementReport, error)
}

// EngagementRate is interactions per impression in percent, rounded to two decimals.
func EngagementRate(m domain.EngagementMetrics) float64 {
	impressions := m.Impressions
	if impressions < 1 {
		impressions = 1
	}
	return Round2(float64(m.Total()) / float64(impressions) * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
