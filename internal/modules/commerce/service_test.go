package commerce

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhq/membergate/internal/entitlement"
	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/platform/lemonsqueezy"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	products  []*Product
	purchases []*Purchase
}

func (f *fakeRepository) GetProductBySlug(_ context.Context, slug string) (*Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *fakeRepository) GetProductByPriceID(_ context.Context, priceID string) (*Product, error) {
	for _, p := range f.products {
		if p.StripePriceID != nil && *p.StripePriceID == priceID {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *fakeRepository) ListPublishedProducts(_ context.Context) ([]*Product, error) {
	var out []*Product
	for _, p := range f.products {
		if p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpsertPurchase(_ context.Context, supabaseUID, productID string, w PurchaseWrite) error {
	for _, p := range f.purchases {
		if p.SupabaseUID != nil && *p.SupabaseUID == supabaseUID && p.ProductID == productID {
			if w.LicenseKey != "" {
				p.LicenseKey = &w.LicenseKey
			}
			if w.ExternalSessionID != "" {
				p.ExternalSessionID = &w.ExternalSessionID
			}
			return nil
		}
	}
	row := &Purchase{SupabaseUID: &supabaseUID, ProductID: productID}
	if w.LicenseKey != "" {
		row.LicenseKey = &w.LicenseKey
	}
	if w.ExternalSessionID != "" {
		row.ExternalSessionID = &w.ExternalSessionID
	}
	if w.CustomerEmail != "" {
		row.CustomerEmail = &w.CustomerEmail
	}
	f.purchases = append(f.purchases, row)
	return nil
}

func (f *fakeRepository) InsertUnmatchedPurchase(_ context.Context, email, productID string, w PurchaseWrite) error {
	row := &Purchase{CustomerEmail: &email, ProductID: productID}
	if w.ExternalSessionID != "" {
		row.ExternalSessionID = &w.ExternalSessionID
	}
	f.purchases = append(f.purchases, row)
	return nil
}

func (f *fakeRepository) HasPurchase(_ context.Context, supabaseUID, productID string) (bool, error) {
	for _, p := range f.purchases {
		if p.SupabaseUID != nil && *p.SupabaseUID == supabaseUID && p.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) PurchaseExistsBySession(_ context.Context, sessionID string) (bool, error) {
	for _, p := range f.purchases {
		if p.ExternalSessionID != nil && *p.ExternalSessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) ClaimUnmatched(_ context.Context, supabaseUID, email string) (int64, error) {
	var claimed int64
	for _, p := range f.purchases {
		if p.SupabaseUID != nil || p.CustomerEmail == nil {
			continue
		}
		if !strings.EqualFold(*p.CustomerEmail, email) {
			continue
		}
		owned, _ := f.HasPurchase(context.Background(), supabaseUID, p.ProductID)
		if owned {
			continue
		}
		uid := supabaseUID
		p.SupabaseUID = &uid
		claimed++
	}
	return claimed, nil
}

type fakeLicenses struct {
	activate lemonsqueezy.Result
}

func (f *fakeLicenses) Validate(context.Context, string, string) lemonsqueezy.Result {
	return f.activate
}

func (f *fakeLicenses) Activate(context.Context, string, string, string) lemonsqueezy.Result {
	return f.activate
}

type fakeDirectory struct{ byEmail map[string]string }

func (f *fakeDirectory) UserIDByEmail(email string) (string, bool) {
	uid, ok := f.byEmail[email]
	return uid, ok
}

type fakeMailer struct{ receipts []string }

func (f *fakeMailer) SendPurchaseReceipt(_ context.Context, to, title string) {
	f.receipts = append(f.receipts, to+"/"+title)
}

type commerceDeps struct {
	repo      *fakeRepository
	licenses  *fakeLicenses
	directory *fakeDirectory
	mailer    *fakeMailer
}

func newTestService(t *testing.T) (Service, *commerceDeps) {
	t.Helper()
	deps := &commerceDeps{
		repo:      &fakeRepository{},
		licenses:  &fakeLicenses{},
		directory: &fakeDirectory{byEmail: map[string]string{}},
		mailer:    &fakeMailer{},
	}
	svc := NewService(&ServiceConfig{
		Repo:      deps.repo,
		Licenses:  deps.licenses,
		Directory: deps.directory,
		Mailer:    deps.mailer,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return svc, deps
}

func toolX() *Product {
	price := "price_123"
	lsID := int64(777)
	return &Product{
		ID:            "p1",
		Slug:          "tool-x",
		Title:         "Tool X",
		StripePriceID: &price,
		LSProductID:   &lsID,
		Published:     true,
	}
}

func emailUser(uid, email string) *identity.UnifiedUser {
	return &identity.UnifiedUser{SupabaseUID: uid, Email: email, Role: identity.RoleFree}
}

func TestActivateLicense_Reasons(t *testing.T) {
	svc, deps := newTestService(t)
	deps.repo.products = []*Product{toolX()}
	ctx := context.Background()

	res, err := svc.ActivateLicense(ctx, nil, "", "tool-x")
	require.NoError(t, err)
	assert.Equal(t, ReasonMissingParams, res.Reason)

	res, err = svc.ActivateLicense(ctx, nil, "KEY", "no-such-product")
	require.NoError(t, err)
	assert.Equal(t, ReasonProductNotFound, res.Reason)

	deps.licenses.activate = lemonsqueezy.Result{Reason: lemonsqueezy.ReasonProductMismatch}
	res, err = svc.ActivateLicense(ctx, nil, "KEY", "tool-x")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonProductMismatch, res.Reason)
	assert.Empty(t, deps.repo.purchases, "a mismatched key must grant nothing")
}

func TestActivateLicense_AnonymousSetsNoPurchase(t *testing.T) {
	svc, deps := newTestService(t)
	deps.repo.products = []*Product{toolX()}
	deps.licenses.activate = lemonsqueezy.Result{OK: true}

	res, err := svc.ActivateLicense(context.Background(), nil, "KEY", "tool-x")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.False(t, res.SavedToAccount)
	assert.Equal(t, "tool-x", res.Slug)
	assert.Empty(t, deps.repo.purchases)
}

func TestActivateLicense_SavesToLinkedAccount(t *testing.T) {
	svc, deps := newTestService(t)
	deps.repo.products = []*Product{toolX()}
	deps.licenses.activate = lemonsqueezy.Result{OK: true}

	res, err := svc.ActivateLicense(context.Background(), emailUser("U", "ada@example.com"), "KEY", "tool-x")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.True(t, res.SavedToAccount)

	require.Len(t, deps.repo.purchases, 1)
	row := deps.repo.purchases[0]
	assert.Equal(t, "U", *row.SupabaseUID)
	assert.Equal(t, "p1", row.ProductID)
	assert.Equal(t, "KEY", *row.LicenseKey)

	// The later product view resolves access via the purchase row alone.
	view, err := svc.CheckAccess(context.Background(), emailUser("U", "ada@example.com"), "tool-x", "/p/tool-x/view", false)
	require.NoError(t, err)
	assert.True(t, view.Decision.Allowed)
	assert.Equal(t, entitlement.RulePurchase, view.Decision.Rule)
}

func TestCheckAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("license cookie grants access without an account", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}

		view, err := svc.CheckAccess(ctx, nil, "tool-x", "/p/tool-x/view", true)
		require.NoError(t, err)
		assert.True(t, view.Decision.Allowed)
		assert.Equal(t, entitlement.RuleLicense, view.Decision.Rule)
	})

	t.Run("membership includes flagged products", func(t *testing.T) {
		svc, deps := newTestService(t)
		p := toolX()
		p.MembershipIncluded = true
		deps.repo.products = []*Product{p}

		member := &identity.UnifiedUser{TelegramID: 42, Role: identity.RoleMember}
		view, err := svc.CheckAccess(ctx, member, "tool-x", "/p/tool-x/view", false)
		require.NoError(t, err)
		assert.True(t, view.Decision.Allowed)
		assert.Equal(t, entitlement.RuleMembershipIncluded, view.Decision.Rule)
	})

	t.Run("denied identified caller is sent to the offer page", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}

		view, err := svc.CheckAccess(ctx, emailUser("U", "ada@example.com"), "tool-x", "/p/tool-x/view", false)
		require.NoError(t, err)
		assert.False(t, view.Decision.Allowed)
		assert.Equal(t, "/p/tool-x", view.Redirect)
	})

	t.Run("denied anonymous caller is sent to login with redirect", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}

		view, err := svc.CheckAccess(ctx, nil, "tool-x", "/p/tool-x/view", false)
		require.NoError(t, err)
		assert.False(t, view.Decision.Allowed)
		assert.Equal(t, "/login?redirect=%2Fp%2Ftool-x%2Fview", view.Redirect)
	})

	t.Run("unpublished products are not found", func(t *testing.T) {
		svc, deps := newTestService(t)
		p := toolX()
		p.Published = false
		deps.repo.products = []*Product{p}

		_, err := svc.CheckAccess(ctx, nil, "tool-x", "/p/tool-x/view", false)
		assert.True(t, ErrProductNotFound.Is(err))
	})
}

func TestHandleCheckoutCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("known buyer gets an owned purchase and a receipt", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}
		deps.directory.byEmail["ada@example.com"] = "U"

		require.NoError(t, svc.HandleCheckoutCompleted(ctx, "price_123", "ada@example.com", "cs_1"))

		require.Len(t, deps.repo.purchases, 1)
		assert.Equal(t, "U", *deps.repo.purchases[0].SupabaseUID)
		assert.Equal(t, []string{"ada@example.com/Tool X"}, deps.mailer.receipts)
	})

	t.Run("redelivered session writes once", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}
		deps.directory.byEmail["ada@example.com"] = "U"

		require.NoError(t, svc.HandleCheckoutCompleted(ctx, "price_123", "ada@example.com", "cs_1"))
		require.NoError(t, svc.HandleCheckoutCompleted(ctx, "price_123", "ada@example.com", "cs_1"))

		assert.Len(t, deps.repo.purchases, 1)
		assert.Len(t, deps.mailer.receipts, 1)
	})

	t.Run("unknown buyer gets an unmatched row", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}

		require.NoError(t, svc.HandleCheckoutCompleted(ctx, "price_123", "new@example.com", "cs_2"))

		require.Len(t, deps.repo.purchases, 1)
		row := deps.repo.purchases[0]
		assert.Nil(t, row.SupabaseUID)
		assert.Equal(t, "new@example.com", *row.CustomerEmail)

		email := row.Owner().UnmatchedEmail()
		assert.Equal(t, "new@example.com", email)
	})

	t.Run("unmapped price id is acknowledged without writes", func(t *testing.T) {
		svc, deps := newTestService(t)
		deps.repo.products = []*Product{toolX()}

		require.NoError(t, svc.HandleCheckoutCompleted(ctx, "price_unknown", "ada@example.com", "cs_3"))
		assert.Empty(t, deps.repo.purchases)
	})
}

func TestClaimUnmatched(t *testing.T) {
	svc, deps := newTestService(t)
	deps.repo.products = []*Product{toolX()}

	// One unmatched row for the email, one already owned by the account.
	require.NoError(t, svc.HandleCheckoutCompleted(context.Background(), "price_123", "ada@example.com", "cs_1"))
	require.Len(t, deps.repo.purchases, 1)
	require.Nil(t, deps.repo.purchases[0].SupabaseUID)

	svc.ClaimUnmatched(context.Background(), "U", "ADA@example.com")

	require.NotNil(t, deps.repo.purchases[0].SupabaseUID)
	assert.Equal(t, "U", *deps.repo.purchases[0].SupabaseUID)

	// A second claim is a no-op.
	svc.ClaimUnmatched(context.Background(), "U", "ada@example.com")
	assert.Len(t, deps.repo.purchases, 1)
}
