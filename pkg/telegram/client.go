package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financial-news-ai/pkg/logger"
	"financial-news-ai/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// chatMessageInterval is Telegram's per-chat pace of about one message per second.
const chatMessageInterval = time.Second

// Notifier delivers digest and alert messages to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// messageSender is the part of tgbotapi.BotAPI the client uses.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type client struct {
	bot     messageSender
	chatID  int64
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewClient creates a Telegram notifier for one chat.
func NewClient(botToken string, chatID int64, log *logger.Logger) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return newClient(bot, chatID, rate.NewLimiter(rate.Every(chatMessageInterval), 1), log), nil
}

func newClient(bot messageSender, chatID int64, limiter *rate.Limiter, log *logger.Logger) *client {
	if log == nil {
		log = logger.NewNop()
	}
	return &client{bot: bot, chatID: chatID, limiter: limiter, logger: log}
}

// SendMessage sends text as Markdown, pacing messages per chat.
// A flood-control reply is retried once after the requested wait. Markdown Telegram
// cannot parse, such as an unbalanced "_" in a headline, is resent as plain text.
func (c *client) SendMessage(ctx context.Context, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	err := c.send(text, tgbotapi.ModeMarkdown)
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.RetryAfter > 0:
		wait := time.Duration(apiErr.RetryAfter) * time.Second
		c.logger.Warn("Telegram flood control, retrying", logger.DurationField("retry_after", wait))
		if err := utils.SleepContext(ctx, wait); err != nil {
			return err
		}
		return c.send(text, tgbotapi.ModeMarkdown)
	case strings.Contains(apiErr.Message, "can't parse entities"):
		c.logger.Warn("Telegram rejected Markdown, resending as plain text", logger.ErrorField(err))
		return c.send(text, "")
	default:
		return err
	}
}

func (c *client) send(text, parseMode string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	_, err := c.bot.Send(msg)
	return err
}
