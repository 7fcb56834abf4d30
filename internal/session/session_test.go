package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec("test-secret", false)

	cookie, err := c.Encode(User{
		TelegramID: 42,
		FirstName:  "Ada",
		Username:   "ada",
		Role:       "member",
	})
	require.NoError(t, err)
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	u, ok := c.Decode(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, int64(42), u.TelegramID)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "member", u.Role)
}

func TestCodecRejectsTamperedPayload(t *testing.T) {
	c := NewCodec("test-secret", false)

	cookie, err := c.Encode(User{TelegramID: 42, FirstName: "Ada", Role: "free"})
	require.NoError(t, err)

	// Flip one byte of every position in the payload segment. The decoder must
	// treat each mutation as an absent session, never a decoded-but-wrong user.
	lastDot := strings.LastIndex(cookie.Value, ".")
	for i := 0; i < lastDot; i++ {
		mutated := []byte(cookie.Value)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		_, ok := c.Decode(string(mutated))
		assert.False(t, ok, "mutation at byte %d accepted", i)
	}
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	a := NewCodec("secret-a", false)
	b := NewCodec("secret-b", false)

	cookie, err := a.Encode(User{TelegramID: 7, FirstName: "Eve", Role: "admin"})
	require.NoError(t, err)

	_, ok := b.Decode(cookie.Value)
	assert.False(t, ok)
}

func TestCodecRejectsGarbage(t *testing.T) {
	c := NewCodec("test-secret", false)

	for _, v := range []string{"", "no-dot-here", ".", "a.b", "!!!.deadbeef"} {
		_, ok := c.Decode(v)
		assert.False(t, ok, "value %q accepted", v)
	}
}

func TestClearExpiresCookie(t *testing.T) {
	c := NewCodec("test-secret", true)
	cookie := c.Clear()
	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.Secure)
}

func TestLicenseCookie(t *testing.T) {
	c := NewCodec("test-secret", false)
	cookie := c.LicenseCookie("tool-x", "KEY-123")
	assert.Equal(t, "ls_access_tool-x", cookie.Name)
	assert.Equal(t, "KEY-123", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}
