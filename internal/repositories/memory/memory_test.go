package memory

import (
	"context"
	"testing"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/stretchr/testify/require"
)

func TestQueueTransitionRejectsStaleStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRepo()

	item, err := repo.Create(ctx, domain.QueueItem{PostID: "p1", Platform: domain.PlatformTwitter, ScheduledFor: time.Now()})
	require.NoError(t, err)
	require.Equal(t, domain.QueueStatusScheduled, item.Status)

	require.NoError(t, repo.Transition(ctx, item.ID, domain.QueueStatusScheduled, domain.QueueStatusProcessing, ""))
	require.ErrorIs(t, repo.Transition(ctx, item.ID, domain.QueueStatusScheduled, domain.QueueStatusProcessing, ""), queue.ErrStaleStatus)
	require.Error(t, repo.Transition(ctx, item.ID, domain.QueueStatusPosted, domain.QueueStatusScheduled, ""))
	require.ErrorIs(t, repo.Transition(ctx, "missing", domain.QueueStatusScheduled, domain.QueueStatusProcessing, ""), queue.ErrNotFound)
}

func TestQueueListDueOrdersByScheduleAndSkipsFuture(t *testing.T) {
	ctx := context.Background()
	repo := NewQueueRepo()
	now := time.Now()

	late, _ := repo.Create(ctx, domain.QueueItem{PostID: "a", ScheduledFor: now.Add(-time.Minute)})
	early, _ := repo.Create(ctx, domain.QueueItem{PostID: "b", ScheduledFor: now.Add(-time.Hour)})
	_, _ = repo.Create(ctx, domain.QueueItem{PostID: "c", ScheduledFor: now.Add(time.Hour)})

	due, err := repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, early.ID, due[0].ID)
	require.Equal(t, late.ID, due[1].ID)
}

func TestPostUpdateAppliesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepo()

	p, err := repo.Create(ctx, domain.Post{Title: "title", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, domain.PostStatusPending, p.Status)
	require.Equal(t, domain.DefaultNiche, p.Niche)

	processed := "rewritten"
	done := true
	require.NoError(t, repo.Update(ctx, p.ID, domain.PostUpdate{ProcessedContent: &processed, AIProcessed: &done}))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "rewritten", got.ProcessedContent)
	require.True(t, got.AIProcessed)
	require.Equal(t, "body", got.Content)
	require.Equal(t, domain.PostStatusPending, got.Status)
}

func TestSessionSaveKeepsSingleActive(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepo()

	first, _ := repo.Save(ctx, domain.BrowserSession{Platform: domain.PlatformTwitter, SessionData: []byte(`[]`)})
	second, _ := repo.Save(ctx, domain.BrowserSession{Platform: domain.PlatformTwitter, SessionData: []byte(`[{}]`)})

	active, err := repo.GetActive(ctx, domain.PlatformTwitter)
	require.NoError(t, err)
	require.Equal(t, second.ID, active.ID)
	require.NotEqual(t, first.ID, active.ID)
}
