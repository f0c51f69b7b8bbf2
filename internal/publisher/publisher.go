package publisher

import (
	"context"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
)

// Action is one engagement against an external account.
type Action struct {
	Type         domain.EngagementType
	Platform     domain.Platform
	Target       string
	TargetPostID string
	// Content is the comment or reply text. Comments without it are generated.
	Content string
	Niche   string
}

// Delay is a uniformly random wait between Min and Max.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// Human pacing per platform action.
var (
	TwitterChunkDelay = Delay{2 * time.Second, 5 * time.Second}
	TelegramDelay     = Delay{1 * time.Second, 3 * time.Second}
	FacebookDelay     = Delay{3 * time.Second, 7 * time.Second}

	EngagementDelays = map[domain.EngagementType]Delay{
		domain.EngagementLike:    {10 * time.Second, 60 * time.Second},
		domain.EngagementRetweet: {30 * time.Second, 120 * time.Second},
		domain.EngagementComment: {5 * time.Minute, 15 * time.Minute},
		domain.EngagementReply:   {1 * time.Minute, 3 * time.Minute},
	}
)

//go:generate go run go.uber.org/mock/mockgen -source=publisher.go -destination=mocks/mock.go
type Publisher interface {
	// Publish delivers content for post to platform. A nil error means delivered.
	Publish(ctx context.Context, platform domain.Platform, content string, post *domain.Post) error

	// Engage performs action after a human-like delay. The attempt is always
	// written to the engagement log and the activity feed.
	Engage(ctx context.Context, action Action) error
}
