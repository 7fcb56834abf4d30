package notification

import (
	"context"
	"log/slog"

	"github.com/communityhq/membergate/internal/notification/templates"
)

// emailSender sends a rendered email. Not exposed outside the package.
type emailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service sends the transactional mail this system produces. Sends are
// dispatched asynchronously; failures are logged, never returned, because no
// caller can do anything useful with a mail error.
type Service interface {
	SendPurchaseReceipt(ctx context.Context, to, productTitle string)
}

type service struct {
	log    *slog.Logger
	sender emailSender
	engine *templates.Engine
}

// NewService creates a new notification service. A nil sender disables mail
// entirely, which is the correct behavior for deployments without SMTP.
func NewService(log *slog.Logger, sender emailSender, engine *templates.Engine) Service {
	return &service{
		log:    log,
		sender: sender,
		engine: engine,
	}
}

// SendPurchaseReceipt mails a receipt for a completed product checkout.
func (s *service) SendPurchaseReceipt(ctx context.Context, to, productTitle string) {
	if s.sender == nil || to == "" {
		return
	}

	rendered, err := s.engine.Render("commerce.purchase_receipt", templates.ReceiptData{
		ProductTitle: productTitle,
	})
	if err != nil {
		s.log.Error("failed to render receipt template", "error", err)
		return
	}

	go func() {
		// Detached from the request context: the webhook response must not
		// wait on SMTP.
		if err := s.sender.Send(context.WithoutCancel(ctx), to, rendered.Subject, rendered.HTML); err != nil {
			s.log.Error("failed to send purchase receipt", "to", to, "error", err)
			return
		}
		s.log.Info("purchase receipt sent", "to", to)
	}()
}
