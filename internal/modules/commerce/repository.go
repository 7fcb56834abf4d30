package commerce

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/communityhq/membergate/internal/database"
)

// PurchaseWrite carries the optional columns of a purchase row. Empty strings
// are stored as NULL.
type PurchaseWrite struct {
	LicenseKey        string
	ExternalSessionID string
	CustomerEmail     string
}

// Repository defines the database operations for the commerce module.
type Repository interface {
	// Products
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	GetProductByPriceID(ctx context.Context, priceID string) (*Product, error)
	ListPublishedProducts(ctx context.Context) ([]*Product, error)

	// Purchases
	UpsertPurchase(ctx context.Context, supabaseUID, productID string, w PurchaseWrite) error
	InsertUnmatchedPurchase(ctx context.Context, email, productID string, w PurchaseWrite) error
	HasPurchase(ctx context.Context, supabaseUID, productID string) (bool, error)
	PurchaseExistsBySession(ctx context.Context, externalSessionID string) (bool, error)
	ClaimUnmatched(ctx context.Context, supabaseUID, email string) (int64, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new commerce repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getProduct(ctx, squirrel.Eq{"slug": slug})
}

func (r *repository) GetProductByPriceID(ctx context.Context, priceID string) (*Product, error) {
	return r.getProduct(ctx, squirrel.Eq{"stripe_price_id": priceID})
}

func (r *repository) getProduct(ctx context.Context, pred squirrel.Eq) (*Product, error) {
	query, args, err := r.psql.Select("*").
		From("comm_products").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p Product
	err = pgxscan.Get(ctx, r.db, &p, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound.WithCause(err)
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListPublishedProducts(ctx context.Context) ([]*Product, error) {
	query, args, err := r.psql.Select("*").
		From("comm_products").
		Where(squirrel.Eq{"published": true}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var products []*Product
	if err := pgxscan.Select(ctx, r.db, &products, query, args...); err != nil {
		return nil, err
	}
	return products, nil
}

// UpsertPurchase writes a known-owner purchase keyed by
// (supabase_uid, product_id). Redelivered webhooks overwrite the optional
// columns instead of creating duplicate rows.
func (r *repository) UpsertPurchase(ctx context.Context, supabaseUID, productID string, w PurchaseWrite) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	now := time.Now()

	query, args, err := r.psql.Insert("comm_purchases").
		Columns("id", "supabase_uid", "customer_email", "product_id", "license_key", "external_session_id", "created_at", "updated_at").
		Values(id.String(), supabaseUID, nullable(w.CustomerEmail), productID, nullable(w.LicenseKey), nullable(w.ExternalSessionID), now, now).
		Suffix(`ON CONFLICT (supabase_uid, product_id) WHERE supabase_uid IS NOT NULL DO UPDATE SET
			customer_email = COALESCE(EXCLUDED.customer_email, comm_purchases.customer_email),
			license_key = COALESCE(EXCLUDED.license_key, comm_purchases.license_key),
			external_session_id = COALESCE(EXCLUDED.external_session_id, comm_purchases.external_session_id),
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// InsertUnmatchedPurchase records a paid checkout whose buyer has no local
// account yet. The email is the reconciliation key, so it is required.
func (r *repository) InsertUnmatchedPurchase(ctx context.Context, email, productID string, w PurchaseWrite) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	now := time.Now()

	query, args, err := r.psql.Insert("comm_purchases").
		Columns("id", "supabase_uid", "customer_email", "product_id", "license_key", "external_session_id", "created_at", "updated_at").
		Values(id.String(), nil, email, productID, nullable(w.LicenseKey), nullable(w.ExternalSessionID), now, now).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) HasPurchase(ctx context.Context, supabaseUID, productID string) (bool, error) {
	query, args, err := r.psql.Select("1").
		From("comm_purchases").
		Where(squirrel.Eq{"supabase_uid": supabaseUID, "product_id": productID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = pgxscan.Get(ctx, r.db, &one, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurchaseExistsBySession reports whether a checkout session was already
// recorded, which is how webhook redelivery is detected for unmatched buyers.
func (r *repository) PurchaseExistsBySession(ctx context.Context, externalSessionID string) (bool, error) {
	query, args, err := r.psql.Select("1").
		From("comm_purchases").
		Where(squirrel.Eq{"external_session_id": externalSessionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = pgxscan.Get(ctx, r.db, &one, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ClaimUnmatched reassigns unmatched rows with the given checkout email to a
// known owner, skipping any row whose product the owner already has so the
// natural key is never violated. Returns the number of rows claimed.
func (r *repository) ClaimUnmatched(ctx context.Context, supabaseUID, email string) (int64, error) {
	const query = `
		UPDATE comm_purchases p
		SET supabase_uid = $1, updated_at = now()
		WHERE p.supabase_uid IS NULL
		  AND lower(p.customer_email) = lower($2)
		  AND NOT EXISTS (
			SELECT 1 FROM comm_purchases q
			WHERE q.supabase_uid = $1 AND q.product_id = p.product_id
		  )`

	ct, err := r.db.Exec(ctx, query, supabaseUID, email)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
