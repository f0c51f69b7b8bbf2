package publisherimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/activity/activityimpl"
	"github.com/orgball2608/technews-autopilot/internal/ai"
	mock_ai "github.com/orgball2608/technews-autopilot/internal/ai/mocks"
	"github.com/orgball2608/technews-autopilot/internal/browser"
	mock_browser "github.com/orgball2608/technews-autopilot/internal/browser/mocks"
	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/publisher"
	"github.com/orgball2608/technews-autopilot/internal/ratelimit"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	pub         *Impl
	ai          *mock_ai.MockClient
	drivers     map[domain.Platform]*mock_browser.MockDriver
	settings    *settings.Settings
	engagements *memory.EngagementRepo
	activities  *memory.ActivityRepo

	mu     sync.Mutex
	sleeps []time.Duration
}

func newFixture(t *testing.T, platforms ...domain.Platform) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logger.NewNop()

	f := &fixture{
		ai:          mock_ai.NewMockClient(ctrl),
		drivers:     make(map[domain.Platform]*mock_browser.MockDriver),
		engagements: memory.NewEngagementRepo(),
		activities:  memory.NewActivityRepo(),
	}
	f.settings = settings.New(memory.NewConfigurationRepo(), log)

	var sessions []*browser.Session
	for _, p := range platforms {
		d := mock_browser.NewMockDriver(ctrl)
		d.EXPECT().Platform().Return(p).AnyTimes()
		d.EXPECT().RestoreSession(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
		d.EXPECT().Close().Return(nil)
		f.drivers[p] = d
		sessions = append(sessions, browser.NewSession(browser.SessionOpts{
			Driver:      d,
			Credentials: memory.NewCredentialRepo(),
			Sessions:    memory.NewSessionRepo(),
			Logger:      log,
		}))
	}
	manager := browser.NewManager(sessions...)
	t.Cleanup(func() { _ = manager.Close() })

	recorder := activityimpl.New(activityimpl.Opts{
		Activities:  f.activities,
		Engagements: f.engagements,
		Analytics:   memory.NewAnalyticsRepo(),
		Posts:       memory.NewPostRepo(),
		Broadcaster: realtime.Nop{},
		Logger:      log,
	})

	f.pub = &Impl{
		sessions: manager,
		ai:       f.ai,
		settings: f.settings,
		recorder: recorder,
		spacing:  ratelimit.NewSpacing[domain.Platform](0),
		logger:   log,
		sleep: func(_ context.Context, d time.Duration) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.sleeps = append(f.sleeps, d)
			return nil
		},
		jitter: func(d publisher.Delay) time.Duration { return d.Min },
	}
	return f
}

func newsPost() *domain.Post {
	return &domain.Post{
		ID:          "post-1",
		Title:       "New GPU Architecture Unveiled",
		Content:     "raw body",
		OriginalURL: "https://example.com/gpu",
	}
}

func longText(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%02d", i%100)
	}
	return strings.Join(parts, " ")
}

func TestTwitterLongContentBecomesReplyChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.PlatformTwitter)
	content := longText(90)

	f.ai.EXPECT().SplitIntoThread(gomock.Any(), content, settings.TwitterFreeLimit).
		DoAndReturn(func(_ context.Context, text string, limit int) ([]string, error) {
			return ai.SplitThread(text, limit), nil
		})

	var sent []browser.Message
	f.drivers[domain.PlatformTwitter].EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg browser.Message) (string, error) {
			sent = append(sent, msg)
			return fmt.Sprintf("https://twitter.com/technews/status/%d", len(sent)), nil
		}).MinTimes(2)

	require.NoError(t, f.pub.Publish(ctx, domain.PlatformTwitter, content, newsPost()))

	require.Empty(t, sent[0].ReplyTo)
	for i, msg := range sent {
		require.LessOrEqual(t, len([]rune(msg.Text)), settings.TwitterFreeLimit)
		if i > 0 {
			require.Equal(t, fmt.Sprintf("https://twitter.com/technews/status/%d", i), msg.ReplyTo)
		}
		if i < len(sent)-1 {
			require.True(t, strings.HasSuffix(msg.Text, fmt.Sprintf("(%d/%d)", i+1, len(sent))), msg.Text)
		}
	}
	require.NotContains(t, sent[len(sent)-1].Text, fmt.Sprintf("/%d)", len(sent)))

	require.Len(t, f.sleeps, len(sent))
	for _, d := range f.sleeps {
		require.Equal(t, publisher.TwitterChunkDelay.Min, d)
	}

	events, err := f.activities.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Auto-threaded Twitter post", events[0].Title)
}

func TestTwitterPremiumSkipsThreading(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.PlatformTwitter)
	require.NoError(t, f.settings.SetTwitterAccountType(ctx, "premium"))
	content := longText(90)

	f.ai.EXPECT().SplitIntoThread(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.drivers[domain.PlatformTwitter].EXPECT().
		Publish(gomock.Any(), browser.Message{Text: content}).
		Return("https://twitter.com/technews/status/1", nil)

	require.NoError(t, f.pub.Publish(ctx, domain.PlatformTwitter, content, newsPost()))
}

func TestLongFormFormatting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.PlatformTelegram, domain.PlatformFacebook)

	f.drivers[domain.PlatformTelegram].EXPECT().
		Publish(gomock.Any(), browser.Message{Text: "New GPU Architecture Unveiled\n\nrewritten\n\n🔗 https://example.com/gpu"}).
		Return("42", nil)
	f.drivers[domain.PlatformFacebook].EXPECT().
		Publish(gomock.Any(), browser.Message{Text: "New GPU Architecture Unveiled\n\nrewritten\n\nRead more: https://example.com/gpu"}).
		Return("https://facebook.com/posts/1", nil)

	require.NoError(t, f.pub.Publish(ctx, domain.PlatformTelegram, "rewritten", newsPost()))
	require.NoError(t, f.pub.Publish(ctx, domain.PlatformFacebook, "rewritten", newsPost()))
	require.Equal(t, []time.Duration{publisher.TelegramDelay.Min, publisher.FacebookDelay.Min}, f.sleeps)
}

func TestPublishFailureIsReturned(t *testing.T) {
	f := newFixture(t, domain.PlatformTelegram)
	f.drivers[domain.PlatformTelegram].EXPECT().Publish(gomock.Any(), gomock.Any()).Return("", errors.New("chat not found"))

	err := f.pub.Publish(context.Background(), domain.PlatformTelegram, "x", newsPost())
	require.ErrorContains(t, err, "chat not found")
}

func TestPublishUnknownPlatform(t *testing.T) {
	f := newFixture(t)
	require.Error(t, f.pub.Publish(context.Background(), domain.Platform("myspace"), "x", newsPost()))
}

func TestEngageLikeIsLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.PlatformTwitter)
	f.drivers[domain.PlatformTwitter].EXPECT().Engage(gomock.Any(), domain.EngagementLike, "nvidia", "").Return(nil)

	err := f.pub.Engage(ctx, publisher.Action{Type: domain.EngagementLike, Platform: domain.PlatformTwitter, Target: "nvidia"})
	require.NoError(t, err)
	require.Equal(t, []time.Duration{publisher.EngagementDelays[domain.EngagementLike].Min}, f.sleeps)

	entries, err := f.engagements.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].Success)
	require.Equal(t, "nvidia", entries[0].TargetAccount)

	events, err := f.activities.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Liked post from @nvidia", events[0].Description)
}

func TestEngageCommentFailureStillLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.PlatformTwitter)

	f.ai.EXPECT().GenerateComment(gomock.Any(), "Latest technology post from @openai").Return("Great insight!", nil)
	f.drivers[domain.PlatformTwitter].EXPECT().
		Engage(gomock.Any(), domain.EngagementComment, "openai", "Great insight!").
		Return(errors.New("reply box missing"))

	err := f.pub.Engage(ctx, publisher.Action{Type: domain.EngagementComment, Platform: domain.PlatformTwitter, Target: "openai"})
	require.Error(t, err)

	entries, err := f.engagements.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].Success)
	require.Equal(t, "Great insight!", entries[0].Content)
	require.Contains(t, entries[0].Error, "reply box missing")

	events, err := f.activities.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Auto-engagement failed", events[0].Title)
}

func TestEngageCommentGenerationFailureSkipsDriver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.PlatformTwitter)

	f.ai.EXPECT().GenerateComment(gomock.Any(), gomock.Any()).Return("", errors.New("all keys throttled"))
	f.drivers[domain.PlatformTwitter].EXPECT().Engage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	require.Error(t, f.pub.Engage(ctx, publisher.Action{Type: domain.EngagementComment, Platform: domain.PlatformTwitter, Target: "openai"}))
	require.Empty(t, f.sleeps)

	entries, err := f.engagements.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].Success)
}
