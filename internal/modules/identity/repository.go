package identity

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/communityhq/membergate/internal/database"
)

// Repository defines the database operations for the identity module.
// This abstraction allows the service layer to be independent of the database
// implementation.
type Repository interface {
	// Profiles
	GetProfile(ctx context.Context, telegramID int64) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
	UpsertRoleOnly(ctx context.Context, telegramID int64, role Role, checkedAt time.Time) error
	UpdateProfileRole(ctx context.Context, telegramID int64, role Role, checkedAt time.Time) error

	// Auth handoff tokens
	CreateAuthToken(ctx context.Context, token string, expiresAt time.Time) error
	GetAuthToken(ctx context.Context, token string) (*AuthToken, error)
	ConsumeAuthToken(ctx context.Context, token string, tg TelegramLogin, role Role) (bool, error)

	// Identity links
	UpsertIdentityLink(ctx context.Context, supabaseUID string, telegramID int64) error
	LinkedTelegramID(ctx context.Context, supabaseUID string) (int64, bool, error)
	LinkedSupabaseUID(ctx context.Context, telegramID int64) (string, bool, error)
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new identity repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
