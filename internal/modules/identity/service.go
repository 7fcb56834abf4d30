package identity

import (
	"context"
	"log/slog"

	"github.com/communityhq/membergate/internal/config"
	"github.com/communityhq/membergate/internal/session"
)

// MembershipChecker reports live paid-group membership for a Telegram user.
// Implementations must be bounded and fail closed (false on any failure).
type MembershipChecker interface {
	IsGroupMember(ctx context.Context, telegramID int64) bool
}

// LoginNotifier confirms a completed login to the user, best effort.
type LoginNotifier interface {
	SendLoginConfirmation(ctx context.Context, chatID int64)
}

// PurchaseClaimer reconciles unmatched purchase rows to a now-known account.
type PurchaseClaimer interface {
	ClaimUnmatched(ctx context.Context, supabaseUID, email string)
}

// ClaimThrottle gates opportunistic reconciliation to once per window.
type ClaimThrottle interface {
	Acquire(ctx context.Context, key string) bool
}

// LoginStart is the result of opening a Telegram login flow.
type LoginStart struct {
	Token   string
	BotLink string
}

// Poll and link statuses surfaced to the browser.
const (
	StatusPending         = "pending"
	StatusOK              = "ok"
	StatusExpired         = "expired"
	StatusInvalid         = "invalid"
	StatusUnauthenticated = "unauthenticated"
)

// PollResult is the state of a login handoff token as seen by the polling browser.
type PollResult struct {
	Status string
	User   *session.User
}

// Service defines the identity module's business logic: the Telegram login
// handoff, role resolution, identity linking, unified-user assembly, and
// subscription webhook processing.
type Service interface {
	StartLogin(ctx context.Context) (*LoginStart, error)
	ConfirmLogin(ctx context.Context, token string, tg TelegramLogin) error
	PollLogin(ctx context.Context, token string) (*PollResult, error)
	LinkTelegram(ctx context.Context, supabaseUID, token string) (string, error)

	RefreshRole(ctx context.Context, current *session.User) (*session.User, error)
	HandleSubscriptionEvent(ctx context.Context, ev SubscriptionEvent) error

	// ResolveUnified merges whichever raw identities are present into one
	// UnifiedUser. It is the single admission point for protected routes.
	ResolveUnified(ctx context.Context, sess *session.User, supabaseUID, email string) (*UnifiedUser, error)
}

// service implements the Service interface.
type service struct {
	repo     Repository
	checker  MembershipChecker
	notifier LoginNotifier
	claimer  PurchaseClaimer
	throttle ClaimThrottle
	logger   *slog.Logger
	config   *config.Config
}

// Config holds the dependencies for the identity service.
type Config struct {
	Repo     Repository
	Checker  MembershipChecker
	Notifier LoginNotifier
	Claimer  PurchaseClaimer
	Throttle ClaimThrottle
	Logger   *slog.Logger
	Config   *config.Config
}

// NewService creates a new identity service with the given dependencies.
// Claimer and Throttle are optional; without them unified resolution simply
// skips purchase reconciliation.
func NewService(cfg *Config) Service {
	return &service{
		repo:     cfg.Repo,
		checker:  cfg.Checker,
		notifier: cfg.Notifier,
		claimer:  cfg.Claimer,
		throttle: cfg.Throttle,
		logger:   cfg.Logger,
		config:   cfg.Config,
	}
}
