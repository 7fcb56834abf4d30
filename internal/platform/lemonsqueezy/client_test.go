package lemonsqueezy

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/communityhq/membergate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(config.LemonSqueezyConfig{APIKey: "ls-key"}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	c.BaseURL = srv.URL
	return c
}

func TestValidateActiveKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/licenses/validate", r.URL.Path)
		require.Equal(t, "Bearer ls-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"valid":true,"license_key":{"status":"active"},"meta":{"product_id":111}}`))
	})

	res := c.Validate(context.Background(), "KEY", "111")
	assert.True(t, res.OK)
}

func TestValidateProductMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valid":true,"license_key":{"status":"active"},"meta":{"product_id":222}}`))
	})

	res := c.Validate(context.Background(), "KEY", "111")
	assert.False(t, res.OK)
	assert.Equal(t, ReasonProductMismatch, res.Reason)
}

func TestValidateInactiveKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"valid":false,"license_key":{"status":"inactive"}}`))
	})

	res := c.Validate(context.Background(), "KEY", "")
	assert.Equal(t, ReasonInactiveKey, res.Reason)
}

func TestValidateUnknownKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"valid":false,"error":"license_key not found","license_key":{"status":""}}`))
	})

	res := c.Validate(context.Background(), "KEY", "")
	assert.Equal(t, ReasonInvalidKey, res.Reason)
}

func TestActivateSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/licenses/activate", r.URL.Path)
		w.Write([]byte(`{"activated":true,"license_key":{"status":"active"},"meta":{"product_id":111},"instance":{"id":"inst-1"}}`))
	})

	res := c.Activate(context.Background(), "KEY", "membergate", "111")
	assert.True(t, res.OK)
	assert.Equal(t, "inst-1", res.InstanceID)
}

func TestActivateLimitFallsBackToValidate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/licenses/activate":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"activated":false,"error":"This license key has reached the activation limit.","license_key":{"status":"active"}}`))
		case "/licenses/validate":
			w.Write([]byte(`{"valid":true,"license_key":{"status":"active"},"meta":{"product_id":111}}`))
		}
	})

	res := c.Activate(context.Background(), "KEY", "membergate", "111")
	assert.True(t, res.OK, "activation-limit keys must still validate")
}

func TestNoAPIKey(t *testing.T) {
	c := New(config.LemonSqueezyConfig{}, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	assert.Equal(t, ReasonNoAPIKey, c.Validate(context.Background(), "KEY", "").Reason)
	assert.Equal(t, ReasonNoAPIKey, c.Activate(context.Background(), "KEY", "x", "").Reason)
}
