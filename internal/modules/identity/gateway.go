package identity

import (
	"context"
	"log/slog"

	"github.com/communityhq/membergate/internal/session"
)

// AccessTokenVerifier validates an email-auth access token locally and
// extracts the account identity it asserts.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (uid, email string, ok bool)
}

// Gateway is the request-scoped admission point shared by every protected
// handler: it turns raw cookie values into a UnifiedUser, or nil for an
// anonymous caller. Invalid and tampered credentials degrade to anonymous,
// never to an error response.
type Gateway struct {
	service  Service
	sessions *session.Codec
	tokens   AccessTokenVerifier
	logger   *slog.Logger
}

// NewGateway creates a new identity gateway.
func NewGateway(service Service, sessions *session.Codec, tokens AccessTokenVerifier, logger *slog.Logger) *Gateway {
	return &Gateway{
		service:  service,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// Resolve merges the Telegram session cookie and email-auth access token
// cookie, either of which may be empty, into a UnifiedUser.
func (g *Gateway) Resolve(ctx context.Context, sessionCookie, accessToken string) *UnifiedUser {
	var sess *session.User
	if sessionCookie != "" {
		sess, _ = g.sessions.Decode(sessionCookie)
	}

	var uid, email string
	if accessToken != "" && g.tokens != nil {
		if id, mail, ok := g.tokens.VerifyAccessToken(accessToken); ok {
			uid, email = id, mail
		}
	}

	user, err := g.service.ResolveUnified(ctx, sess, uid, email)
	if err != nil {
		g.logger.Error("unified user resolution failed", "error", err)
		return nil
	}
	return user
}

// VerifyEmail validates just the email-auth access token, for routes that
// need the account identity without the full merge. Reports false when no
// verifier is configured.
func (g *Gateway) VerifyEmail(accessToken string) (uid, email string, ok bool) {
	if accessToken == "" || g.tokens == nil {
		return "", "", false
	}
	return g.tokens.VerifyAccessToken(accessToken)
}

// Session decodes just the Telegram session cookie, for routes that only
// care about the Telegram identity.
func (g *Gateway) Session(sessionCookie string) (*session.User, bool) {
	if sessionCookie == "" {
		return nil, false
	}
	return g.sessions.Decode(sessionCookie)
}
