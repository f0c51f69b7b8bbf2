package commandimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	queuerepo "github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/pkg/formatter"
)

const failedListSize = 10

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func (c *CommandImpl) handleStatus(ctx context.Context, chatID int64) error {
	counts, err := c.QueueItems.CountByStatus(ctx)
	if err != nil {
		c.Logger.Error("Failed to count queue items", "error", err)
		_, err = c.Telegram.SendMessage(chatID, "Failed to read the queue. Check the logs.")
		return err
	}
	posts, err := c.Posts.CountSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		c.Logger.Warn("Failed to count recent posts", "error", err)
	}

	var b strings.Builder
	b.WriteString("📊 Pipeline status\n\n")
	fmt.Fprintf(&b, "Emergency stop: %s\n", onOff(c.Settings.EmergencyStopped(ctx)))
	fmt.Fprintf(&b, "Auto engagement: %s\n", onOff(c.Settings.AutoEngagementEnabled(ctx)))
	fmt.Fprintf(&b, "Twitter limit: %d chars\n", c.Settings.TwitterCharacterLimit(ctx))
	fmt.Fprintf(&b, "Posts (24h): %s\n\n", formatter.FormatNumber(posts))
	b.WriteString("Queue:\n")
	for _, s := range []domain.QueueStatus{
		domain.QueueStatusScheduled,
		domain.QueueStatusProcessing,
		domain.QueueStatusPosted,
		domain.QueueStatusFailed,
	} {
		fmt.Fprintf(&b, "  %s: %s\n", s, formatter.FormatNumber(counts[s]))
	}
	if c.Sessions != nil {
		fmt.Fprintf(&b, "\nPlatforms: %v", c.Sessions.Platforms())
	}

	_, err = c.Telegram.SendMessage(chatID, b.String())
	return err
}

func (c *CommandImpl) handleStop(ctx context.Context, chatID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Stopped from telegram"
	}
	if err := c.Settings.SetEmergencyStop(ctx, true, reason); err != nil {
		c.Logger.Error("Failed to activate emergency stop", "error", err)
		_, err = c.Telegram.SendMessage(chatID, "❌ Could not activate the emergency stop.")
		return err
	}

	c.Recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivitySystem,
		Title:       "Emergency Stop Activated",
		Description: reason,
		Metadata:    map[string]any{"source": "telegram"},
	})
	_, err := c.Telegram.SendMessage(chatID, "🛑 Emergency stop activated. Queue drains and engagement are paused.")
	return err
}

func (c *CommandImpl) handleResume(ctx context.Context, chatID int64) error {
	if err := c.Settings.SetEmergencyStop(ctx, false, ""); err != nil {
		c.Logger.Error("Failed to lift emergency stop", "error", err)
		_, err = c.Telegram.SendMessage(chatID, "❌ Could not lift the emergency stop.")
		return err
	}

	c.Recorder.Record(ctx, domain.ActivityEvent{
		Type:        domain.ActivitySystem,
		Title:       "Emergency Stop Deactivated",
		Description: "Automation resumed",
		Metadata:    map[string]any{"source": "telegram"},
	})
	_, err := c.Telegram.SendMessage(chatID, "▶️ Automation resumed.")
	return err
}

func (c *CommandImpl) handleQueue(ctx context.Context, chatID int64) error {
	failed, err := c.QueueItems.ListRecent(ctx, domain.QueueStatusFailed, failedListSize)
	if err != nil {
		c.Logger.Error("Failed to list failed queue items", "error", err)
		_, err = c.Telegram.SendMessage(chatID, "Failed to read the queue. Check the logs.")
		return err
	}
	if len(failed) == 0 {
		_, err = c.Telegram.SendMessage(chatID, "✅ No failed queue items.")
		return err
	}

	var b strings.Builder
	b.WriteString("Failed queue items:\n")
	for _, item := range failed {
		fmt.Fprintf(&b, "\n%s\n  %s, retries %d: %s\n", item.ID, item.Platform, item.RetryCount, formatter.Truncate(item.Error, 120))
	}
	b.WriteString("\nUse /retry <item-id> to requeue one.")

	_, err = c.Telegram.SendMessage(chatID, b.String())
	return err
}

func (c *CommandImpl) handleRetry(ctx context.Context, chatID int64, args string) error {
	id := strings.TrimSpace(args)
	if id == "" {
		_, err := c.Telegram.SendMessage(chatID, "Please provide an item id: /retry <item-id>")
		return err
	}

	item, err := c.Queue.Requeue(ctx, id)
	var reply string
	switch {
	case err == nil:
		reply = fmt.Sprintf("🔁 Requeued for %s as %s (attempt %d).", item.Platform, item.ID, item.RetryCount+1)
	case errors.Is(err, queuerepo.ErrNotFound):
		reply = fmt.Sprintf("Queue item %s not found.", id)
	case errors.Is(err, queue.ErrNotRequeueable):
		reply = "Only failed items can be retried."
	case errors.Is(err, queue.ErrRequeueLimit):
		reply = "This item reached the retry limit."
	default:
		c.Logger.Error("Failed to requeue item", "item_id", id, "error", err)
		reply = "❌ Could not requeue the item. Check the logs."
	}

	_, sendErr := c.Telegram.SendMessage(chatID, reply)
	return sendErr
}
