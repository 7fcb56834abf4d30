package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// CookieName is the name of the signed Telegram session cookie.
const CookieName = "comm_session"

// MaxAge is the lifetime of the session cookie.
const MaxAge = 30 * 24 * time.Hour

// LicenseMaxAge is the lifetime of a product license cookie.
const LicenseMaxAge = 365 * 24 * time.Hour

// User is the payload carried by the signed session cookie. The cookie is the
// sole persistence of this identity; there is no server-side session table.
type User struct {
	TelegramID int64  `json:"telegramId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName,omitempty"`
	Username   string `json:"username,omitempty"`
	PhotoURL   string `json:"photoUrl,omitempty"`
	Role       string `json:"role"`
}

// Codec encodes and decodes the signed session cookie.
//
// The cookie value is base64(JSON payload) + "." + hex(HMAC-SHA256(payload)).
// Any decode or verification failure is reported as "no session" rather than
// an error, so a tampered cookie behaves exactly like an absent one.
type Codec struct {
	secret []byte
	secure bool
}

// NewCodec creates a codec keyed by the server session secret. secure controls
// the cookie Secure attribute and should be true in production.
func NewCodec(secret string, secure bool) *Codec {
	return &Codec{secret: []byte(secret), secure: secure}
}

// Encode serializes the user into a signed session cookie.
func (c *Codec) Encode(u User) (*http.Cookie, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	return &http.Cookie{
		Name:     CookieName,
		Value:    payload + "." + c.sign(payload),
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode verifies and parses a cookie value. The boolean result is false for
// empty, malformed, tampered, or unverifiable values.
func (c *Codec) Decode(value string) (*User, bool) {
	if value == "" {
		return nil, false
	}
	lastDot := strings.LastIndex(value, ".")
	if lastDot < 0 {
		return nil, false
	}
	payload, sig := value[:lastDot], value[lastDot+1:]
	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return nil, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, false
	}
	return &u, true
}

// Clear returns a cookie that deletes the session on the client.
func (c *Codec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// LicenseCookieName returns the name of the per-product license cookie.
func LicenseCookieName(slug string) string {
	return "ls_access_" + slug
}

// LicenseCookie returns a long-lived cookie proving license activation for a
// product slug on this browser (the anonymous, no-account access path).
func (c *Codec) LicenseCookie(slug, key string) *http.Cookie {
	return &http.Cookie{
		Name:     LicenseCookieName(slug),
		Value:    key,
		Path:     "/",
		MaxAge:   int(LicenseMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
