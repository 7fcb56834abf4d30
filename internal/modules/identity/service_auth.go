package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/communityhq/membergate/internal/session"
)

const (
	authTokenBytes = 24
	authTokenTTL   = 10 * time.Minute
)

// StartLogin mints a single-use handoff token and returns the deep link the
// browser should open in Telegram.
func (s *service) StartLogin(ctx context.Context) (*LoginStart, error) {
	buf := make([]byte, authTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	token := hex.EncodeToString(buf)

	if err := s.repo.CreateAuthToken(ctx, token, time.Now().Add(authTokenTTL)); err != nil {
		return nil, err
	}

	return &LoginStart{
		Token:   token,
		BotLink: fmt.Sprintf("https://t.me/%s?start=%s", s.config.Telegram.BotUsername, token),
	}, nil
}

// ConfirmLogin is called from the bot webhook when a user taps the deep link.
// Unknown, expired, and already-used tokens are silently ignored so the
// webhook can always acknowledge delivery. The role stored on the token is
// the merge of the user's persisted role and a live membership check.
func (s *service) ConfirmLogin(ctx context.Context, token string, tg TelegramLogin) error {
	row, err := s.repo.GetAuthToken(ctx, token)
	if err != nil {
		if ErrNotFound.Is(err) {
			return nil
		}
		return err
	}
	now := time.Now()
	if row.Used || row.Expired(now) {
		return nil
	}

	proposed := RoleFree
	if s.checker.IsGroupMember(ctx, tg.ID) {
		proposed = RoleMember
	}

	current := RoleFree
	if existing, err := s.repo.GetProfile(ctx, tg.ID); err == nil {
		current = existing.Role
	} else if !ErrNotFound.Is(err) {
		return err
	}
	role := ApplyRoleUpdate(current, proposed)

	consumed, err := s.repo.ConsumeAuthToken(ctx, token, tg, role)
	if err != nil {
		return err
	}
	if !consumed {
		// Lost a race with a concurrent confirmation for the same token.
		return nil
	}

	profile := &Profile{
		TelegramID:    tg.ID,
		FirstName:     tg.FirstName,
		LastName:      optional(tg.LastName),
		Username:      optional(tg.Username),
		PhotoURL:      optional(tg.PhotoURL),
		Role:          role,
		RoleCheckedAt: now,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return err
	}

	s.logger.Info("telegram login confirmed", "telegram_id", tg.ID, "role", role)
	if s.notifier != nil {
		s.notifier.SendLoginConfirmation(ctx, tg.ID)
	}
	return nil
}

// PollLogin reports the state of a handoff token to the polling browser and,
// once the bot has confirmed it, hands back the session payload.
func (s *service) PollLogin(ctx context.Context, token string) (*PollResult, error) {
	row, err := s.repo.GetAuthToken(ctx, token)
	if err != nil {
		if ErrNotFound.Is(err) {
			return &PollResult{Status: StatusInvalid}, nil
		}
		return nil, err
	}
	if row.Expired(time.Now()) {
		return &PollResult{Status: StatusExpired}, nil
	}
	if !row.Confirmed() {
		return &PollResult{Status: StatusPending}, nil
	}
	return &PollResult{Status: StatusOK, User: sessionUserFromToken(row)}, nil
}

// LinkTelegram attaches the Telegram identity carried by a confirmed handoff
// token to the given account. The returned status mirrors PollLogin.
func (s *service) LinkTelegram(ctx context.Context, supabaseUID, token string) (string, error) {
	row, err := s.repo.GetAuthToken(ctx, token)
	if err != nil {
		if ErrNotFound.Is(err) {
			return StatusInvalid, nil
		}
		return "", err
	}
	if row.Expired(time.Now()) {
		return StatusExpired, nil
	}
	if !row.Confirmed() {
		return StatusPending, nil
	}
	if err := s.repo.UpsertIdentityLink(ctx, supabaseUID, *row.TelegramID); err != nil {
		return "", err
	}
	s.logger.Info("identities linked", "supabase_uid", supabaseUID, "telegram_id", *row.TelegramID)
	return StatusOK, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sessionUserFromToken(row *AuthToken) *session.User {
	u := &session.User{
		TelegramID: *row.TelegramID,
		Role:       string(RoleFree),
	}
	if row.FirstName != nil {
		u.FirstName = *row.FirstName
	}
	if row.LastName != nil {
		u.LastName = *row.LastName
	}
	if row.Username != nil {
		u.Username = *row.Username
	}
	if row.PhotoURL != nil {
		u.PhotoURL = *row.PhotoURL
	}
	if row.Role != nil && row.Role.Valid() {
		u.Role = string(*row.Role)
	}
	return u
}
