package commerce

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/communityhq/membergate/internal/entitlement"
	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/platform/lemonsqueezy"
)

// LicenseAPI is the license-key provider surface the service needs.
type LicenseAPI interface {
	Validate(ctx context.Context, key, expectedProductID string) lemonsqueezy.Result
	Activate(ctx context.Context, key, instanceName, expectedProductID string) lemonsqueezy.Result
}

// AccountDirectory resolves a checkout email to a local account, best effort.
type AccountDirectory interface {
	UserIDByEmail(email string) (string, bool)
}

// ReceiptMailer sends a purchase receipt, best effort.
type ReceiptMailer interface {
	SendPurchaseReceipt(ctx context.Context, to, productTitle string)
}

// ProductView is a product plus the caller's access decision for it.
type ProductView struct {
	Product  *Product
	Decision entitlement.Decision
	Redirect string
}

// Service defines the commerce module's business logic: storefront reads,
// license activation, checkout webhook processing, and unmatched-purchase
// reconciliation.
type Service interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, slug string) (*Product, error)

	// CheckAccess resolves the caller's entitlement to a product, combining
	// role, membership inclusion, purchase rows, and the license cookie.
	CheckAccess(ctx context.Context, user *identity.UnifiedUser, slug, requestedPath string, hasLicenseCookie bool) (*ProductView, error)

	ActivateLicense(ctx context.Context, user *identity.UnifiedUser, key, slug string) (*ActivationResult, error)
	HandleCheckoutCompleted(ctx context.Context, priceID, email, sessionID string) error

	// ClaimUnmatched satisfies the identity module's PurchaseClaimer.
	ClaimUnmatched(ctx context.Context, supabaseUID, email string)
}

type service struct {
	repo      Repository
	licenses  LicenseAPI
	directory AccountDirectory
	mailer    ReceiptMailer
	logger    *slog.Logger
}

// ServiceConfig holds the dependencies for the commerce service.
type ServiceConfig struct {
	Repo      Repository
	Licenses  LicenseAPI
	Directory AccountDirectory
	Mailer    ReceiptMailer
	Logger    *slog.Logger
}

// NewService creates a new commerce service.
func NewService(cfg *ServiceConfig) Service {
	return &service{
		repo:      cfg.Repo,
		licenses:  cfg.Licenses,
		directory: cfg.Directory,
		mailer:    cfg.Mailer,
		logger:    cfg.Logger,
	}
}

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.ListPublishedProducts(ctx)
}

func (s *service) GetProduct(ctx context.Context, slug string) (*Product, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.Published {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// CheckAccess resolves the entitlement ladder for a standalone product. The purchase
// lookup degrades to "no purchase" on store failure so denial, not an error
// page, is the worst outcome.
func (s *service) CheckAccess(ctx context.Context, user *identity.UnifiedUser, slug, requestedPath string, hasLicenseCookie bool) (*ProductView, error) {
	product, err := s.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}

	proof := entitlement.Proof{HasLicenseCookie: hasLicenseCookie}
	if user.HasEmail() {
		owned, err := s.repo.HasPurchase(ctx, user.SupabaseUID, product.ID)
		if err != nil {
			s.logger.Error("purchase lookup failed", "error", err, "product_id", product.ID)
		}
		proof.HasPurchase = owned
	}

	res := entitlement.Resource{
		Kind:               entitlement.KindProduct,
		ID:                 product.ID,
		Slug:               product.Slug,
		MembershipIncluded: product.MembershipIncluded,
	}
	decision := entitlement.CanAccess(user, res, proof)

	view := &ProductView{Product: product, Decision: decision}
	if !decision.Allowed {
		view.Redirect = entitlement.DenyRedirect(user, res, requestedPath)
	}
	return view, nil
}

// ActivateLicense validates and activates a license key. All failure modes come back as an
// enumerated reason in the result, never as an HTTP-level error, so the
// client can render an actionable message.
func (s *service) ActivateLicense(ctx context.Context, user *identity.UnifiedUser, key, slug string) (*ActivationResult, error) {
	if key == "" || slug == "" {
		return &ActivationResult{Reason: ReasonMissingParams}, nil
	}

	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		if ErrProductNotFound.Is(err) {
			return &ActivationResult{Reason: ReasonProductNotFound}, nil
		}
		s.logger.Error("product lookup failed during activation", "error", err, "slug", slug)
		return &ActivationResult{Reason: ReasonServerError}, nil
	}

	expected := ""
	if product.LSProductID != nil {
		expected = strconv.FormatInt(*product.LSProductID, 10)
	}

	res := s.licenses.Activate(ctx, key, "membergate-"+slug, expected)
	if !res.OK {
		return &ActivationResult{Reason: res.Reason}, nil
	}

	result := &ActivationResult{OK: true, Slug: product.Slug}
	if user.HasEmail() {
		write := PurchaseWrite{LicenseKey: key, CustomerEmail: user.Email}
		if err := s.repo.UpsertPurchase(ctx, user.SupabaseUID, product.ID, write); err != nil {
			// The license cookie still grants access; the account linkage can
			// be retried on the next activation.
			s.logger.Error("failed to save activated license to account", "error", err, "product_id", product.ID)
		} else {
			result.SavedToAccount = true
		}
	}

	s.logger.Info("license activated", "slug", slug, "saved_to_account", result.SavedToAccount)
	return result, nil
}

// HandleCheckoutCompleted applies a verified checkout event: resolve the
// product from the price id, the buyer from the checkout email, and record
// the purchase. Redelivered sessions are detected and acknowledged unchanged.
func (s *service) HandleCheckoutCompleted(ctx context.Context, priceID, email, sessionID string) error {
	if priceID == "" {
		s.logger.Warn("checkout event without a price id", "session_id", sessionID)
		return nil
	}

	product, err := s.repo.GetProductByPriceID(ctx, priceID)
	if err != nil {
		if ErrProductNotFound.Is(err) {
			s.logger.Warn("checkout for unmapped price id", "price_id", priceID)
			return nil
		}
		return err
	}

	if sessionID != "" {
		exists, err := s.repo.PurchaseExistsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Info("checkout session already recorded", "session_id", sessionID)
			return nil
		}
	}

	owner := Owner{}
	if email != "" {
		if uid, ok := s.directory.UserIDByEmail(email); ok {
			owner = KnownOwner(uid)
		} else {
			owner = UnmatchedOwner(email)
		}
	}

	write := PurchaseWrite{ExternalSessionID: sessionID, CustomerEmail: email}
	if uid, known := owner.Known(); known {
		if err := s.repo.UpsertPurchase(ctx, uid, product.ID, write); err != nil {
			return err
		}
		s.logger.Info("purchase recorded", "product_id", product.ID, "supabase_uid", uid)
	} else if owner.UnmatchedEmail() != "" {
		if err := s.repo.InsertUnmatchedPurchase(ctx, email, product.ID, write); err != nil {
			return err
		}
		s.logger.Info("unmatched purchase recorded", "product_id", product.ID)
	} else {
		s.logger.Warn("checkout without a customer email, nothing to record", "session_id", sessionID)
		return nil
	}

	if s.mailer != nil {
		s.mailer.SendPurchaseReceipt(ctx, email, product.Title)
	}
	return nil
}

// ClaimUnmatched rewrites unmatched purchase rows to the account that now
// owns the email. Invoked opportunistically from unified identity resolution.
func (s *service) ClaimUnmatched(ctx context.Context, supabaseUID, email string) {
	claimed, err := s.repo.ClaimUnmatched(ctx, supabaseUID, email)
	if err != nil {
		s.logger.Error("failed to claim unmatched purchases", "error", err, "supabase_uid", supabaseUID)
		return
	}
	if claimed > 0 {
		s.logger.Info("claimed unmatched purchases", "supabase_uid", supabaseUID, "count", claimed)
	}
}
