// Package telegram provides a client for sending notifications via Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sortelab/lotogenius/internal/models"
)

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and handles bot commands.
// It returns immediately; the goroutine stops when ctx is cancelled.
func (c *Client) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(update.Message)
				}
			}
		}
	}()
}

func (c *Client) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		c.bot.Send(reply) //nolint:errcheck
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendError sends an analysis error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	text := fmt.Sprintf("⚠️ *Analysis error*\n`%s`", escapeMarkdownV2(cycleErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notification after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Analysis recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

// Send sends a notification with the generated suggestions for one result.
func (c *Client) Send(variant models.Variant, result *models.AnalysisResult) error {
	return c.sendMarkdownV2(c.formatMessage(variant, result))
}

// formatMessage formats an analysis result into a Telegram MarkdownV2 message.
func (c *Client) formatMessage(variant models.Variant, result *models.AnalysisResult) string {
	message := fmt.Sprintf("🎰 *%s suggestions*\n\n", escapeMarkdownV2(variant.Name))
	message += fmt.Sprintf("📅 Contest %d, generated %s\n",
		result.Contest, escapeMarkdownV2(result.CreatedAt.Format("2006-01-02 15:04:05")))

	scoreStr := escapeMarkdownV2(fmt.Sprintf("%.1f%%", result.PresentationScore))
	message += fmt.Sprintf("📊 Score %s, confidence *%s*, %d draws analyzed\n\n",
		scoreStr, escapeMarkdownV2(result.Confidence), result.Statistics.TotalDraws)

	for i, combo := range result.Combinations {
		numbers := make([]string, len(combo))
		for j, n := range combo {
			numbers[j] = fmt.Sprintf("%02d", n)
		}
		message += fmt.Sprintf("%d\\. `%s`\n", i+1, strings.Join(numbers, " "))
	}

	if len(result.Statistics.HotNumbers) > 0 {
		hot := make([]string, len(result.Statistics.HotNumbers))
		for i, n := range result.Statistics.HotNumbers {
			hot[i] = strconv.Itoa(n)
		}
		message += fmt.Sprintf("\n🔥 Hot: %s\n", escapeMarkdownV2(strings.Join(hot, ", ")))
	}

	if result.Warning != "" {
		message += fmt.Sprintf("\n⚠️ %s\n", escapeMarkdownV2(result.Warning))
	}

	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
