package identity

import (
	"context"
	"time"

	"github.com/communityhq/membergate/internal/session"
)

// RefreshRole re-resolves the caller's role and returns the session payload
// that should be re-signed into the cookie. Admin and member roles are
// trusted from the store; only free users get a live membership check, so a
// webhook-granted upgrade becomes visible without waiting for cookie expiry.
func (s *service) RefreshRole(ctx context.Context, current *session.User) (*session.User, error) {
	stored := RoleFree
	profile, err := s.repo.GetProfile(ctx, current.TelegramID)
	switch {
	case err == nil:
		stored = profile.Role
	case ErrNotFound.Is(err):
		// Session outlived the profile row; fall through to a live check.
	default:
		return nil, err
	}

	resolved := stored
	if stored == RoleFree && s.checker.IsGroupMember(ctx, current.TelegramID) {
		resolved = RoleMember
	}

	switch {
	case profile != nil && resolved != profile.Role:
		if err := s.repo.UpdateProfileRole(ctx, current.TelegramID, resolved, time.Now()); err != nil {
			return nil, err
		}
		s.logger.Info("role refreshed", "telegram_id", current.TelegramID, "from", profile.Role, "to", resolved)
	case profile == nil && resolved != RoleFree:
		// No row to update; recreate the minimal role record.
		if err := s.repo.UpsertRoleOnly(ctx, current.TelegramID, resolved, time.Now()); err != nil {
			return nil, err
		}
		s.logger.Info("role refreshed", "telegram_id", current.TelegramID, "from", stored, "to", resolved)
	}

	updated := *current
	updated.Role = string(resolved)
	return &updated, nil
}

// HandleSubscriptionEvent applies a subscription-platform webhook to the
// profile store. Redelivery is harmless: grants and revocations are upserts
// keyed by Telegram id, and unknown event names are acknowledged unchanged.
func (s *service) HandleSubscriptionEvent(ctx context.Context, ev SubscriptionEvent) error {
	tgID := ev.Payload.TelegramUserID
	if tgID == 0 {
		s.logger.Warn("subscription event without telegram id", "event", ev.Name)
		return nil
	}

	switch ev.Name {
	case EventNewSubscription, EventRenewedSubscription:
		current := RoleFree
		if profile, err := s.repo.GetProfile(ctx, tgID); err == nil {
			current = profile.Role
		} else if !ErrNotFound.Is(err) {
			return err
		}
		role := ApplyRoleUpdate(current, RoleMember)
		if err := s.repo.UpsertRoleOnly(ctx, tgID, role, time.Now()); err != nil {
			return err
		}
		s.logger.Info("subscription grant applied", "event", ev.Name, "telegram_id", tgID, "role", role)

	case EventCancelledSubscription:
		profile, err := s.repo.GetProfile(ctx, tgID)
		if err != nil {
			if ErrNotFound.Is(err) {
				return nil
			}
			return err
		}
		role := ApplyRoleUpdate(profile.Role, RoleFree)
		if role == profile.Role {
			return nil
		}
		if err := s.repo.UpdateProfileRole(ctx, tgID, role, time.Now()); err != nil {
			return err
		}
		s.logger.Info("subscription revoked", "telegram_id", tgID)

	default:
		s.logger.Debug("ignoring subscription event", "event", ev.Name)
	}
	return nil
}
