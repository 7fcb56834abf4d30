package identity

import (
	"context"
	"encoding/json"

	"github.com/go-telegram/bot/models"

	"github.com/communityhq/membergate/internal/metrics"
)

// --- DTOs (Data Transfer Objects) ---

// TelegramWebhookRequest is a raw Telegram bot update. The body is kept raw
// so the secret-token check happens before any parsing.
type TelegramWebhookRequest struct {
	SecretToken string `header:"X-Telegram-Bot-Api-Secret-Token"`
	RawBody     []byte
}

// TributeWebhookRequest is a raw subscription platform event. The body is
// kept raw because the signature covers the exact bytes on the wire.
type TributeWebhookRequest struct {
	Signature string `header:"trbt-signature"`
	RawBody   []byte
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Body struct {
		Status string `json:"status"`
	}
}

func ackWebhook() *WebhookResponse {
	resp := &WebhookResponse{}
	resp.Body.Status = "ok"
	return resp
}

// --- Handlers ---

// TelegramWebhookHandler consumes bot updates. Only "/start <token>" commands
// matter; everything else is acknowledged and dropped. The response is 200
// for every authenticated delivery so Telegram never retries.
func (h *Handler) TelegramWebhookHandler(ctx context.Context, input *TelegramWebhookRequest) (*WebhookResponse, error) {
	if !h.telegramHook.Verify(input.RawBody, input.SecretToken) {
		h.logger.Warn("rejected telegram webhook with bad secret token")
		metrics.WebhookEvents.WithLabelValues("telegram", "rejected").Inc()
		return nil, ErrInvalidSignature
	}

	var update models.Update
	if err := json.Unmarshal(input.RawBody, &update); err != nil {
		h.logger.Warn("unparseable telegram update", "error", err)
		metrics.WebhookEvents.WithLabelValues("telegram", "malformed").Inc()
		return ackWebhook(), nil
	}

	login, token, ok := loginFromUpdate(&update)
	if !ok {
		metrics.WebhookEvents.WithLabelValues("telegram", "ignored").Inc()
		return ackWebhook(), nil
	}

	if err := h.service.ConfirmLogin(ctx, token, login); err != nil {
		// Acknowledge anyway: Telegram redelivery cannot fix a store failure
		// and the browser will see the token expire.
		h.logger.Error("failed to confirm login", "error", err, "telegram_id", login.ID)
		metrics.WebhookEvents.WithLabelValues("telegram", "error").Inc()
		return ackWebhook(), nil
	}

	metrics.WebhookEvents.WithLabelValues("telegram", "processed").Inc()
	return ackWebhook(), nil
}

// TributeWebhookHandler consumes subscription platform events. Deliveries
// are verified against the raw body, applied idempotently, and always
// acknowledged with 200 once authenticated.
func (h *Handler) TributeWebhookHandler(ctx context.Context, input *TributeWebhookRequest) (*WebhookResponse, error) {
	if !h.tributeHasKey {
		h.logger.Error("tribute webhook received but no api key is configured")
		return nil, ErrServerMisconfigured
	}
	if !h.tributeHook.Verify(input.RawBody, input.Signature) {
		h.logger.Warn("rejected tribute webhook with bad signature")
		metrics.WebhookEvents.WithLabelValues("tribute", "rejected").Inc()
		return nil, ErrInvalidSignature
	}

	var ev SubscriptionEvent
	if err := json.Unmarshal(input.RawBody, &ev); err != nil {
		h.logger.Warn("malformed tribute payload", "error", err)
		metrics.WebhookEvents.WithLabelValues("tribute", "malformed").Inc()
		return nil, ErrMalformedPayload.WithCause(err)
	}

	if err := h.service.HandleSubscriptionEvent(ctx, ev); err != nil {
		h.logger.Error("failed to apply subscription event", "error", err, "event", ev.Name)
		metrics.WebhookEvents.WithLabelValues("tribute", "error").Inc()
		return nil, ErrInternal.WithCause(err)
	}

	metrics.WebhookEvents.WithLabelValues("tribute", "processed").Inc()
	return ackWebhook(), nil
}
