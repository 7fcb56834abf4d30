package commerce

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/communityhq/membergate/internal/metrics"
)

// PriceResolver maps a checkout session to the price id of its first line
// item. The completed-checkout event does not embed line items, so this is a
// follow-up API call.
type PriceResolver interface {
	FirstPriceID(ctx context.Context, checkoutSessionID string) (string, bool)
}

// StripePriceResolver resolves line items through the Stripe API.
type StripePriceResolver struct{}

// FirstPriceID returns the price id of the session's first line item.
func (StripePriceResolver) FirstPriceID(_ context.Context, checkoutSessionID string) (string, bool) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(checkoutSessionID),
	}
	params.Limit = stripe.Int64(1)

	iter := checkoutsession.ListLineItems(params)
	for iter.Next() {
		item := iter.LineItem()
		if item.Price != nil {
			return item.Price.ID, true
		}
	}
	return "", false
}

// --- DTOs (Data Transfer Objects) ---

// StripeWebhookRequest is a raw payment platform event. The body stays raw
// because the SDK verifies the signature over the exact wire bytes.
type StripeWebhookRequest struct {
	Signature string `header:"Stripe-Signature"`
	RawBody   []byte
}

// StripeWebhookResponse acknowledges a delivery.
type StripeWebhookResponse struct {
	Body struct {
		Received bool `json:"received"`
	}
}

// --- Handler ---

// StripeWebhookHandler verifies and applies payment platform events. Only
// checkout.session.completed mutates state; other event types are
// acknowledged and dropped. Signature failures are 400 per the provider's
// retry contract.
func (h *Handler) StripeWebhookHandler(ctx context.Context, input *StripeWebhookRequest) (*StripeWebhookResponse, error) {
	event, err := stripewebhook.ConstructEvent(input.RawBody, input.Signature, h.endpointSecret)
	if err != nil {
		h.logger.Warn("rejected stripe webhook", "error", err)
		metrics.WebhookEvents.WithLabelValues("stripe", "rejected").Inc()
		return nil, ErrInvalidWebhook.WithCause(err)
	}

	resp := &StripeWebhookResponse{}
	resp.Body.Received = true

	if event.Type != "checkout.session.completed" {
		metrics.WebhookEvents.WithLabelValues("stripe", "ignored").Inc()
		return resp, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("unparseable checkout session payload", "error", err)
		metrics.WebhookEvents.WithLabelValues("stripe", "malformed").Inc()
		return nil, ErrInvalidWebhook.WithCause(err)
	}

	priceID, ok := h.prices.FirstPriceID(ctx, sess.ID)
	if !ok {
		h.logger.Warn("checkout session has no line items", "session_id", sess.ID)
		metrics.WebhookEvents.WithLabelValues("stripe", "no_op").Inc()
		return resp, nil
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}

	if err := h.service.HandleCheckoutCompleted(ctx, priceID, email, sess.ID); err != nil {
		// Surface a 500 so the provider redelivers; the write path is
		// idempotent under redelivery.
		h.logger.Error("failed to record checkout", "error", err, "session_id", sess.ID)
		metrics.WebhookEvents.WithLabelValues("stripe", "error").Inc()
		return nil, ErrInternal.WithCause(err)
	}

	metrics.WebhookEvents.WithLabelValues("stripe", "processed").Inc()
	return resp, nil
}
