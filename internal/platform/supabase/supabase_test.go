package supabase

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/communityhq/membergate/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func signedToken(t *testing.T, secret, uid, email string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   uid,
		"email": email,
		"exp":   exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyAccessToken(t *testing.T) {
	c := New(config.SupabaseConfig{JWTSecret: "jwt-secret"}, testLogger())

	id, ok := c.VerifyAccessToken(signedToken(t, "jwt-secret", "uid-1", "a@b.co", time.Now().Add(time.Hour)))
	require.True(t, ok)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "a@b.co", id.Email)
}

func TestVerifyAccessTokenRejections(t *testing.T) {
	c := New(config.SupabaseConfig{JWTSecret: "jwt-secret"}, testLogger())

	_, ok := c.VerifyAccessToken("")
	assert.False(t, ok, "empty token")

	_, ok = c.VerifyAccessToken(signedToken(t, "other-secret", "uid-1", "a@b.co", time.Now().Add(time.Hour)))
	assert.False(t, ok, "wrong signing key")

	_, ok = c.VerifyAccessToken(signedToken(t, "jwt-secret", "uid-1", "a@b.co", time.Now().Add(-time.Hour)))
	assert.False(t, ok, "expired token")

	noSecret := New(config.SupabaseConfig{}, testLogger())
	_, ok = noSecret.VerifyAccessToken(signedToken(t, "jwt-secret", "uid-1", "a@b.co", time.Now().Add(time.Hour)))
	assert.False(t, ok, "verifier without configured secret")
}

func TestUserIDByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "buyer@example.com", r.URL.Query().Get("email"))
		w.Write([]byte(`{"users":[{"id":"uid-9","email":"buyer@example.com"}]}`))
	}))
	defer srv.Close()

	c := New(config.SupabaseConfig{URL: srv.URL, ServiceRoleKey: "service-key"}, testLogger())

	uid, ok := c.UserIDByEmail("buyer@example.com")
	require.True(t, ok)
	assert.Equal(t, "uid-9", uid)
}

func TestUserIDByEmailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[]}`))
	}))
	defer srv.Close()

	c := New(config.SupabaseConfig{URL: srv.URL, ServiceRoleKey: "service-key"}, testLogger())

	_, ok := c.UserIDByEmail("nobody@example.com")
	assert.False(t, ok)
}
