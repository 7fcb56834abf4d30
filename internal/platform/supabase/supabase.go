// Package supabase reads identities issued by the external email/OAuth auth
// provider. This service never creates or mutates those identities; it only
// verifies the provider's access tokens and looks users up in its directory.
package supabase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/communityhq/membergate/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-retryablehttp"
)

// AccessTokenCookie is the cookie carrying the provider's access token.
const AccessTokenCookie = "sb-access-token"

// Identity is an email-auth identity as this system sees it.
type Identity struct {
	UID   string
	Email string
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Client verifies provider-issued access tokens and queries the provider's
// admin user directory.
type Client struct {
	cfg  config.SupabaseConfig
	http *retryablehttp.Client
	log  *slog.Logger
}

// New creates a provider client. Directory lookups retry transient failures
// and give up quickly; token verification is purely local.
func New(cfg config.SupabaseConfig, log *slog.Logger) *Client {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 2
	cl.HTTPClient.Timeout = 5 * time.Second
	cl.Logger = nil
	return &Client{cfg: cfg, http: cl, log: log}
}

// VerifyAccessToken validates the provider's HS256 access token and returns
// the identity it asserts. Any parse or signature failure means "no email
// identity", never an error to the caller.
func (c *Client) VerifyAccessToken(token string) (*Identity, bool) {
	if token == "" || c.cfg.JWTSecret == "" {
		return nil, false
	}

	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(c.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, false
	}

	return &Identity{UID: claims.Subject, Email: claims.Email}, true
}

// UserIDByEmail resolves an email to the provider's user id via the admin
// directory API (exact match). Returns "" and false when the user does not
// exist or the lookup fails.
func (c *Client) UserIDByEmail(email string) (string, bool) {
	if email == "" || c.cfg.URL == "" || c.cfg.ServiceRoleKey == "" {
		return "", false
	}

	endpoint := fmt.Sprintf("%s/auth/v1/admin/users?email=%s", c.cfg.URL, url.QueryEscape(email))
	req, err := retryablehttp.NewRequest("GET", endpoint, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("apikey", c.cfg.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceRoleKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("user directory lookup failed", "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", false
	}

	var payload struct {
		Users []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false
	}

	for _, u := range payload.Users {
		if u.Email == email {
			return u.ID, true
		}
	}
	return "", false
}
