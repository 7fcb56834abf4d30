package identity

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/communityhq/membergate/internal/session"
)

// ResolveUnified merges the Telegram session and the email identity, if
// present, into a single UnifiedUser. The role is the highest rank asserted
// by any source. When both identities arrive together for the first time the
// link is recorded, and a throttled reconciliation pass claims any purchase
// rows that were stored before the buyer's account existed.
func (s *service) ResolveUnified(ctx context.Context, sess *session.User, supabaseUID, email string) (*UnifiedUser, error) {
	if sess == nil && supabaseUID == "" {
		return nil, nil
	}

	u := &UnifiedUser{Role: RoleFree}

	if sess != nil {
		u.TelegramID = sess.TelegramID
		u.FirstName = sess.FirstName
		u.Username = sess.Username
		if r := Role(sess.Role); r.Valid() {
			u.Role = r
		}
	}
	if supabaseUID != "" {
		u.SupabaseUID = supabaseUID
		u.Email = email
	}

	var (
		profileRole Role
		linkedUID   string
		linkedTgID  int64
		tgFromLink  *Profile
	)
	g, gctx := errgroup.WithContext(ctx)

	if sess != nil {
		g.Go(func() error {
			profile, err := s.repo.GetProfile(gctx, sess.TelegramID)
			if err != nil {
				if ErrNotFound.Is(err) {
					return nil
				}
				return err
			}
			profileRole = profile.Role
			return nil
		})
		if supabaseUID == "" {
			g.Go(func() error {
				uid, ok, err := s.repo.LinkedSupabaseUID(gctx, sess.TelegramID)
				if err != nil {
					return err
				}
				if ok {
					linkedUID = uid
				}
				return nil
			})
		}
	} else {
		g.Go(func() error {
			tgID, ok, err := s.repo.LinkedTelegramID(gctx, supabaseUID)
			if err != nil || !ok {
				return err
			}
			linkedTgID = tgID
			profile, err := s.repo.GetProfile(gctx, tgID)
			if err != nil {
				if ErrNotFound.Is(err) {
					return nil
				}
				return err
			}
			tgFromLink = profile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	u.Role = MaxRole(u.Role, profileRole)
	if linkedUID != "" {
		u.SupabaseUID = linkedUID
	}
	if tgFromLink != nil {
		u.TelegramID = linkedTgID
		u.FirstName = tgFromLink.FirstName
		if tgFromLink.Username != nil {
			u.Username = *tgFromLink.Username
		}
		u.Role = MaxRole(u.Role, tgFromLink.Role)
	} else if sess == nil && linkedTgID != 0 {
		u.TelegramID = linkedTgID
	}

	if sess != nil && supabaseUID != "" {
		s.ensureLink(ctx, supabaseUID, sess.TelegramID)
	}
	if u.SupabaseUID != "" && u.Email != "" {
		s.claimPurchases(ctx, u.SupabaseUID, u.Email)
	}
	return u, nil
}

// ensureLink records the email-to-Telegram bridge the first time both
// identities are observed together. An existing link for the uid wins.
func (s *service) ensureLink(ctx context.Context, supabaseUID string, telegramID int64) {
	if _, ok, err := s.repo.LinkedTelegramID(ctx, supabaseUID); err != nil || ok {
		return
	}
	if err := s.repo.UpsertIdentityLink(ctx, supabaseUID, telegramID); err != nil {
		s.logger.Error("failed to auto-link identities", "error", err, "supabase_uid", supabaseUID)
		return
	}
	s.logger.Info("identities auto-linked", "supabase_uid", supabaseUID, "telegram_id", telegramID)
}

// claimPurchases runs the unmatched-purchase reconciliation at most once per
// throttle window per account. Failures are logged, never surfaced; the next
// window retries.
func (s *service) claimPurchases(ctx context.Context, supabaseUID, email string) {
	if s.claimer == nil {
		return
	}
	if s.throttle != nil && !s.throttle.Acquire(ctx, "purchase-claim:"+supabaseUID) {
		return
	}
	s.claimer.ClaimUnmatched(ctx, supabaseUID, email)
}
