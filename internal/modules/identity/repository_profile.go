package identity

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// GetProfile retrieves a profile by Telegram id.
// It returns ErrNotFound if no profile exists.
func (r *repository) GetProfile(ctx context.Context, telegramID int64) (*Profile, error) {
	query, args, err := r.psql.Select("*").
		From("comm_profiles").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p Profile
	err = pgxscan.Get(ctx, r.db, &p, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}

	return &p, nil
}

// UpsertProfile inserts or fully refreshes a profile by its natural key.
// Display fields always take the new values; role and role_checked_at are
// expected to already have passed through ApplyRoleUpdate at the call site.
func (r *repository) UpsertProfile(ctx context.Context, p *Profile) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_profiles").
		Columns("telegram_id", "first_name", "last_name", "username", "photo_url", "role", "role_checked_at", "created_at", "updated_at").
		Values(p.TelegramID, p.FirstName, p.LastName, p.Username, p.PhotoURL, p.Role, p.RoleCheckedAt, now, now).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			username = EXCLUDED.username,
			photo_url = EXCLUDED.photo_url,
			role = EXCLUDED.role,
			role_checked_at = EXCLUDED.role_checked_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// UpsertRoleOnly inserts or updates a profile's role by its natural key
// without touching display fields on update. A brand-new row gets a
// placeholder display name until the user first logs in through the bot.
func (r *repository) UpsertRoleOnly(ctx context.Context, telegramID int64, role Role, checkedAt time.Time) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_profiles").
		Columns("telegram_id", "first_name", "role", "role_checked_at", "created_at", "updated_at").
		Values(telegramID, "Telegram user", role, checkedAt, now, now).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			role = EXCLUDED.role,
			role_checked_at = EXCLUDED.role_checked_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// UpdateProfileRole sets a new role on an existing profile.
// It returns ErrNotFound when no profile exists for the Telegram id.
func (r *repository) UpdateProfileRole(ctx context.Context, telegramID int64, role Role, checkedAt time.Time) error {
	query, args, err := r.psql.Update("comm_profiles").
		Set("role", role).
		Set("role_checked_at", checkedAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
