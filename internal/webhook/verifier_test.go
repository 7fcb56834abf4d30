package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(key string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACHexVerifier(t *testing.T) {
	v := NewHMACHexVerifier("shared-key")
	body := []byte(`{"name":"new_subscription"}`)

	assert.True(t, v.Verify(body, signHex("shared-key", body)))
	assert.False(t, v.Verify(body, signHex("other-key", body)))
	assert.False(t, v.Verify(body, ""))
	assert.False(t, v.Verify([]byte(`{"name":"tampered"}`), signHex("shared-key", body)))
}

func TestSecretTokenVerifier(t *testing.T) {
	v := NewSecretTokenVerifier("hook-secret")

	assert.True(t, v.Verify(nil, "hook-secret"))
	assert.False(t, v.Verify(nil, "wrong"))
	assert.False(t, v.Verify(nil, ""))

	empty := NewSecretTokenVerifier("")
	assert.False(t, empty.Verify(nil, ""))
}
