package commerce

import (
	"time"
)

// Product is a standalone digital good sold outside the membership, with the
// provider identifiers the webhook and license flows key on.
type Product struct {
	ID                 string    `db:"id"`
	Slug               string    `db:"slug"`
	Title              string    `db:"title"`
	Tagline            *string   `db:"tagline"`
	ContentHTML        *string   `db:"content_html"`
	StripePriceID      *string   `db:"stripe_price_id"`
	LSProductID        *int64    `db:"ls_product_id"`
	LSURL              *string   `db:"ls_url"`
	MembershipIncluded bool      `db:"membership_included"`
	Published          bool      `db:"published"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// Owner is the tagged owner of a purchase: either a known account or an
// unmatched buyer identified only by the checkout email, awaiting
// reconciliation.
type Owner struct {
	uid   string
	email string
}

// KnownOwner tags a purchase as belonging to an account.
func KnownOwner(uid string) Owner { return Owner{uid: uid} }

// UnmatchedOwner tags a purchase whose buyer has no account yet.
func UnmatchedOwner(email string) Owner { return Owner{email: email} }

// Known returns the account id and whether the owner is a known account.
func (o Owner) Known() (string, bool) { return o.uid, o.uid != "" }

// UnmatchedEmail returns the checkout email of an unmatched owner, empty for
// a known one.
func (o Owner) UnmatchedEmail() string {
	if o.uid != "" {
		return ""
	}
	return o.email
}

// Purchase is a proof-of-purchase row, written by the payment webhook or by
// license activation. Rows with a known owner are unique on
// (supabase_uid, product_id); unmatched rows keep the buyer's email for later
// reconciliation.
type Purchase struct {
	ID                string    `db:"id"`
	SupabaseUID       *string   `db:"supabase_uid"`
	CustomerEmail     *string   `db:"customer_email"`
	ProductID         string    `db:"product_id"`
	LicenseKey        *string   `db:"license_key"`
	ExternalSessionID *string   `db:"external_session_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Owner derives the tagged owner from the row's nullable columns.
func (p *Purchase) Owner() Owner {
	if p.SupabaseUID != nil && *p.SupabaseUID != "" {
		return KnownOwner(*p.SupabaseUID)
	}
	if p.CustomerEmail != nil {
		return UnmatchedOwner(*p.CustomerEmail)
	}
	return Owner{}
}

// Activation reasons returned by the license endpoint.
const (
	ReasonMissingParams   = "missing_params"
	ReasonProductNotFound = "product_not_found"
	ReasonInvalidKey      = "invalid_key"
	ReasonInactiveKey     = "inactive_key"
	ReasonProductMismatch = "product_mismatch"
	ReasonNoAPIKey        = "no_api_key"
	ReasonFetchError      = "fetch_error"
	ReasonServerError     = "server_error"
)

// ActivationResult is the outcome of a license activation attempt.
type ActivationResult struct {
	OK             bool
	Reason         string
	SavedToAccount bool
	// Slug echoes the product slug so the handler can scope the license cookie.
	Slug string
}
