package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhq/membergate/internal/session"
)

func TestPollLoginHandler_ConfirmedBody(t *testing.T) {
	api, deps := newTestAPI(t, true)

	id := int64(42)
	role := RoleMember
	deps.repo.tokens["tok"] = &AuthToken{
		Token:      "tok",
		Used:       true,
		TelegramID: &id,
		FirstName:  optional("Ada"),
		Role:       &role,
		ExpiresAt:  time.Now().Add(time.Minute),
	}

	resp := api.Get("/auth/telegram/poll?token=tok")
	require.Equal(t, 200, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Set-Cookie"))

	var body struct {
		Status string `json:"status"`
		Role   string `json:"role"`
		User   *struct {
			TelegramID int64 `json:"telegramId"`
		} `json:"user"`
	}
	require.NoError(t, jsonDecode(resp.Body.Bytes(), &body))
	assert.Equal(t, StatusOK, body.Status)
	assert.Equal(t, "member", body.Role)
	require.NotNil(t, body.User)
	assert.Equal(t, int64(42), body.User.TelegramID)
}

func TestPollLoginHandler_PendingBodyOmitsRole(t *testing.T) {
	api, deps := newTestAPI(t, true)
	deps.repo.tokens["tok"] = &AuthToken{Token: "tok", ExpiresAt: time.Now().Add(time.Minute)}

	resp := api.Get("/auth/telegram/poll?token=tok")
	require.Equal(t, 200, resp.Code)

	var body map[string]any
	require.NoError(t, jsonDecode(resp.Body.Bytes(), &body))
	assert.Equal(t, StatusPending, body["status"])
	assert.NotContains(t, body, "role")
	assert.NotContains(t, body, "user")
}

func TestLinkTelegramHandler_NoVerifierConfigured(t *testing.T) {
	api, _ := newTestAPI(t, true)

	// The test gateway has no access-token verifier; a link attempt with a
	// token cookie must degrade to unauthenticated instead of panicking.
	resp := api.Get("/auth/telegram/link?token=tok", "Cookie: sb-access-token=abc")
	require.Equal(t, 200, resp.Code)

	var body map[string]any
	require.NoError(t, jsonDecode(resp.Body.Bytes(), &body))
	assert.Equal(t, StatusUnauthenticated, body["status"])
}

func TestRefreshRoleHandler_Body(t *testing.T) {
	api, deps := newTestAPI(t, true)
	deps.repo.profiles[42] = &Profile{TelegramID: 42, FirstName: "Ada", Role: RoleMember}

	codec := session.NewCodec("test-session-secret", false)
	cookie, err := codec.Encode(session.User{TelegramID: 42, FirstName: "Ada", Role: "free"})
	require.NoError(t, err)

	resp := api.Post("/auth/refresh-role", "Cookie: "+session.CookieName+"="+cookie.Value)
	require.Equal(t, 200, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Set-Cookie"))

	var body struct {
		OK   bool   `json:"ok"`
		Role string `json:"role"`
	}
	require.NoError(t, jsonDecode(resp.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "member", body.Role)
}
