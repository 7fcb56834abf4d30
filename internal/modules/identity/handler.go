package identity

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/communityhq/membergate/internal/session"
	"github.com/communityhq/membergate/internal/webhook"
)

// Handler holds the dependencies for the identity module's HTTP handlers.
type Handler struct {
	service       Service
	sessions      *session.Codec
	gateway       *Gateway
	telegramHook  webhook.Verifier
	tributeHook   webhook.Verifier
	tributeHasKey bool
	logger        *slog.Logger
}

// HandlerConfig holds the dependencies for NewHandler.
type HandlerConfig struct {
	Service       Service
	Sessions      *session.Codec
	Gateway       *Gateway
	TelegramHook  webhook.Verifier
	TributeHook   webhook.Verifier
	TributeHasKey bool
	Logger        *slog.Logger
}

// NewHandler creates a new handler for the identity module.
func NewHandler(cfg *HandlerConfig) *Handler {
	return &Handler{
		service:       cfg.Service,
		sessions:      cfg.Sessions,
		gateway:       cfg.Gateway,
		telegramHook:  cfg.TelegramHook,
		tributeHook:   cfg.TributeHook,
		tributeHasKey: cfg.TributeHasKey,
		logger:        cfg.Logger,
	}
}

// RegisterRoutes sets up the routing for the identity module.
func (h *Handler) RegisterRoutes(api huma.API) {
	// --- Telegram login handoff ---
	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/telegram/start",
		Summary: "Open a Telegram login flow",
	}, h.StartLoginHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/telegram/webhook",
		Summary: "Receive Telegram bot updates",
	}, h.TelegramWebhookHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/auth/telegram/poll",
		Summary: "Poll a login handoff token",
	}, h.PollLoginHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/auth/telegram/link",
		Summary: "Link a confirmed Telegram identity to the signed-in account",
	}, h.LinkTelegramHandler)

	// --- Session routes ---
	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/refresh-role",
		Summary: "Re-resolve the caller's role",
	}, h.RefreshRoleHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/auth/logout",
		Summary: "Clear the Telegram session",
	}, h.LogoutHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/auth/me",
		Summary: "Get the unified current user",
	}, h.MeHandler)

	// --- Subscription platform webhook ---
	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/webhooks/tribute",
		Summary: "Receive subscription platform events",
	}, h.TributeWebhookHandler)
}
