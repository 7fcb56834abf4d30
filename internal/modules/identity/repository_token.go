package identity

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// CreateAuthToken inserts a fresh, unused login handoff token.
func (r *repository) CreateAuthToken(ctx context.Context, token string, expiresAt time.Time) error {
	query, args, err := r.psql.Insert("comm_auth_tokens").
		Columns("token", "used", "expires_at", "created_at").
		Values(token, false, expiresAt, time.Now()).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// GetAuthToken retrieves a token row by its value.
// It returns ErrNotFound for unknown tokens.
func (r *repository) GetAuthToken(ctx context.Context, token string) (*AuthToken, error) {
	query, args, err := r.psql.Select("*").
		From("comm_auth_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t AuthToken
	err = pgxscan.Get(ctx, r.db, &t, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}

	return &t, nil
}

// ConsumeAuthToken marks a token used and attaches the confirmed Telegram
// identity, guarded so only an unused, unexpired token can be consumed. The
// boolean result reports whether this call won the consumption.
func (r *repository) ConsumeAuthToken(ctx context.Context, token string, tg TelegramLogin, role Role) (bool, error) {
	query, args, err := r.psql.Update("comm_auth_tokens").
		Set("used", true).
		Set("telegram_id", tg.ID).
		Set("first_name", tg.FirstName).
		Set("last_name", nullable(tg.LastName)).
		Set("username", nullable(tg.Username)).
		Set("photo_url", nullable(tg.PhotoURL)).
		Set("role", role).
		Where(squirrel.Eq{"token": token, "used": false}).
		Where(squirrel.Gt{"expires_at": time.Now()}).
		ToSql()
	if err != nil {
		return false, err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}

	return ct.RowsAffected() > 0, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
