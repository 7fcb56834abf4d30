package identity

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// UpsertIdentityLink bridges an email identity to a Telegram identity,
// keyed by supabase uid so re-linking moves the bridge rather than
// duplicating it.
func (r *repository) UpsertIdentityLink(ctx context.Context, supabaseUID string, telegramID int64) error {
	query, args, err := r.psql.Insert("comm_identity_links").
		Columns("supabase_uid", "telegram_id", "created_at").
		Values(supabaseUID, telegramID, time.Now()).
		Suffix(`ON CONFLICT (supabase_uid) DO UPDATE SET telegram_id = EXCLUDED.telegram_id`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// LinkedTelegramID resolves the Telegram identity linked to an email identity.
func (r *repository) LinkedTelegramID(ctx context.Context, supabaseUID string) (int64, bool, error) {
	query, args, err := r.psql.Select("telegram_id").
		From("comm_identity_links").
		Where(squirrel.Eq{"supabase_uid": supabaseUID}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, false, err
	}

	var telegramID int64
	err = r.db.QueryRow(ctx, query, args...).Scan(&telegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	return telegramID, true, nil
}

// LinkedSupabaseUID resolves the email identity linked to a Telegram identity.
// Multiple email identities may point at one Telegram id; the earliest link wins.
func (r *repository) LinkedSupabaseUID(ctx context.Context, telegramID int64) (string, bool, error) {
	query, args, err := r.psql.Select("supabase_uid").
		From("comm_identity_links").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var uid string
	err = r.db.QueryRow(ctx, query, args...).Scan(&uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return uid, true, nil
}
