package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/communityhq/membergate/internal/config"
	"github.com/communityhq/membergate/internal/metrics"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const checkTimeout = 5 * time.Second

// Client wraps the Telegram Bot API for the two things this service needs:
// checking paid-group membership and confirming logins in chat.
type Client struct {
	bot      *bot.Bot
	cfg      config.TelegramConfig
	log      *slog.Logger
	disabled bool
}

// New connects the bot client. With an empty token the client is disabled:
// membership checks report non-member and confirmations are dropped.
func New(cfg config.TelegramConfig, log *slog.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		log.Info("telegram client disabled, no bot token configured")
		return &Client{cfg: cfg, log: log, disabled: true}, nil
	}
	b, err := bot.New(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	return &Client{bot: b, cfg: cfg, log: log}, nil
}

// IsGroupMember reports whether the Telegram user currently belongs to the
// paid group (member, administrator, or creator status).
//
// Transient API failures are retried per the configured policy
// (Telegram.CheckRetries additional attempts with exponential backoff); a
// definitive non-member answer is never retried. Any remaining failure
// degrades to false so callers always fail closed.
func (c *Client) IsGroupMember(ctx context.Context, telegramID int64) bool {
	if c.disabled || c.cfg.PaidGroupID == 0 {
		return false
	}

	attempt := func() (bool, error) {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		member, err := c.bot.GetChatMember(cctx, &bot.GetChatMemberParams{
			ChatID: c.cfg.PaidGroupID,
			UserID: telegramID,
		})
		if err != nil {
			return false, err
		}
		switch member.Type {
		case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
			return true, nil
		}
		return false, nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.MaxInterval = 5 * time.Second

	isMember, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(c.cfg.CheckRetries+1)),
	)
	if err != nil {
		c.log.Warn("membership check failed", "telegram_id", telegramID, "error", err)
		metrics.MembershipChecks.WithLabelValues("error").Inc()
		return false
	}

	if isMember {
		metrics.MembershipChecks.WithLabelValues("member").Inc()
	} else {
		metrics.MembershipChecks.WithLabelValues("non_member").Inc()
	}
	return isMember
}

// SendLoginConfirmation tells the user in chat that the login went through.
// Delivery is best effort; the login itself already succeeded.
func (c *Client) SendLoginConfirmation(ctx context.Context, chatID int64) {
	if c.disabled {
		return
	}
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Вы успешно вошли! Вернитесь на сайт — страница обновится автоматически.",
	})
	if err != nil {
		c.log.Warn("failed to send login confirmation", "chat_id", chatID, "error", err)
	}
}
