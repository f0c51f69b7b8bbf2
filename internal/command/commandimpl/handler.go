package commandimpl

import (
	"context"
	"errors"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpMessage = `🤖 TechNews Autopilot operator console

/status - Pipeline state, queue counts and posts of the last 24h
/stop [reason] - Activate the emergency stop
/resume - Lift the emergency stop
/queue - Latest failed queue items
/retry <item-id> - Requeue a failed item
/help - This message`

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	if !c.Telegram.Enabled() {
		c.Logger.Info("Telegram disabled, operator console not started")
		<-ctx.Done()
		return ctx.Err()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			go func(msg *tgbotapi.Message) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				var userID int64
				if msg.From != nil {
					userID = msg.From.ID
				}
				if err := c.processCommand(ctx, msg.Chat.ID, userID, msg.Command(), msg.CommandArguments()); err != nil {
					c.Logger.Error("Error processing command", "command", msg.Command(), "error", err)
				}
			}(update.Message)
		}
	}
}

func (c *CommandImpl) processCommand(ctx context.Context, chatID, userID int64, cmd, args string) error {
	if c.Config.Telegram.User == 0 || userID != c.Config.Telegram.User {
		c.Logger.Warn("Command from unknown user ignored", "user_id", userID, "command", cmd)
		_, err := c.Telegram.SendMessage(chatID, "⛔ You are not allowed to operate this bot.")
		return err
	}
	if !c.limiter.Allow(userID) {
		_, err := c.Telegram.SendMessage(chatID, "⏳ Too many commands, slow down a little.")
		return err
	}

	c.Logger.Info("Command received", "command", cmd, "args", args)

	switch cmd {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "status":
		return c.handleStatus(ctx, chatID)
	case "stop":
		return c.handleStop(ctx, chatID, args)
	case "resume":
		return c.handleResume(ctx, chatID)
	case "queue":
		return c.handleQueue(ctx, chatID)
	case "retry":
		return c.handleRetry(ctx, chatID, args)
	default:
		_, err := c.Telegram.SendMessage(chatID, "Unknown command. Type /help to see the list of available commands.")
		return err
	}
}
