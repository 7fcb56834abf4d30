package identity

import (
	"time"
)

// Role is the coarse-grained authorization level of a user.
type Role string

const (
	RoleFree   Role = "free"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Rank orders roles for merge precedence: admin > member > free.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleFree || r == RoleMember || r == RoleAdmin
}

// MaxRole returns the higher-ranked of two roles.
func MaxRole(a, b Role) Role {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ApplyRoleUpdate is the single downgrade gate for automatic role mutation:
// an admin profile is never changed by recomputation, only by manual edit.
// Every webhook and refresh path must route its proposed role through here.
func ApplyRoleUpdate(current, proposed Role) Role {
	if current == RoleAdmin {
		return RoleAdmin
	}
	return proposed
}

// Profile is the persisted per-Telegram-identity record. Rows are long-lived;
// display fields are refreshed on each login, role by webhooks and re-checks.
type Profile struct {
	TelegramID    int64     `db:"telegram_id"`
	FirstName     string    `db:"first_name"`
	LastName      *string   `db:"last_name"`
	Username      *string   `db:"username"`
	PhotoURL      *string   `db:"photo_url"`
	Role          Role      `db:"role"`
	RoleCheckedAt time.Time `db:"role_checked_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// AuthToken is a short-lived, single-use login handoff token. The browser
// polls it while the bot is the only legitimate party that can consume it.
type AuthToken struct {
	Token      string    `db:"token"`
	Used       bool      `db:"used"`
	TelegramID *int64    `db:"telegram_id"`
	FirstName  *string   `db:"first_name"`
	LastName   *string   `db:"last_name"`
	Username   *string   `db:"username"`
	PhotoURL   *string   `db:"photo_url"`
	Role       *Role     `db:"role"`
	ExpiresAt  time.Time `db:"expires_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// Expired reports whether the token is past its expiry.
func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Confirmed reports whether the bot has consumed the token and attached a
// Telegram identity to it.
func (t *AuthToken) Confirmed() bool {
	return t.Used && t.TelegramID != nil
}

// IdentityLink bridges an email-auth identity to a Telegram identity. At most
// one Telegram id per supabase uid; rows are never deleted in normal operation.
type IdentityLink struct {
	SupabaseUID string    `db:"supabase_uid"`
	TelegramID  int64     `db:"telegram_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// TelegramLogin is the identity the bot reports on a /start confirmation.
type TelegramLogin struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	PhotoURL  string
}

// UnifiedUser is the per-request merge of whichever raw identities are
// present. It is derived, never persisted. Role is always the highest-ranked
// role any contributing source asserts.
type UnifiedUser struct {
	TelegramID  int64  `json:"telegramId,omitempty"`
	SupabaseUID string `json:"supabaseUid,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	Username    string `json:"username,omitempty"`
	Role        Role   `json:"role"`
}

// HasTelegram reports whether a Telegram identity contributed to this user.
func (u *UnifiedUser) HasTelegram() bool { return u != nil && u.TelegramID != 0 }

// HasEmail reports whether an email identity contributed to this user.
func (u *UnifiedUser) HasEmail() bool { return u != nil && u.SupabaseUID != "" }

// IsMember reports whether the user holds member-level access or better.
func (u *UnifiedUser) IsMember() bool {
	return u != nil && u.Role.Rank() >= RoleMember.Rank()
}

// IsAdmin reports whether the user is an administrator.
func (u *UnifiedUser) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// SubscriptionEvent is a parsed subscription-platform webhook event.
type SubscriptionEvent struct {
	Name    string `json:"name"`
	Payload struct {
		TelegramUserID int64   `json:"telegram_user_id"`
		Amount         float64 `json:"amount,omitempty"`
		Currency       string  `json:"currency,omitempty"`
	} `json:"payload"`
}

// Subscription event names this service reacts to.
const (
	EventNewSubscription       = "new_subscription"
	EventRenewedSubscription   = "renewed_subscription"
	EventCancelledSubscription = "cancelled_subscription"
)
