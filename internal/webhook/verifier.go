// Package webhook isolates each inbound provider's signature scheme behind a
// single Verifier capability, so handlers compose verification at the boundary
// and the schemes stay independently testable.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Verifier checks the authenticity of a raw webhook body against the value of
// the provider's signature header.
type Verifier interface {
	Verify(rawBody []byte, header string) bool
}

// HMACHexVerifier verifies a hex-encoded HMAC-SHA256 of the raw body, keyed by
// a shared API key. This is the subscription platform's scheme.
type HMACHexVerifier struct {
	key []byte
}

// NewHMACHexVerifier creates a verifier keyed by the provider's shared API key.
func NewHMACHexVerifier(key string) *HMACHexVerifier {
	return &HMACHexVerifier{key: []byte(key)}
}

func (v *HMACHexVerifier) Verify(rawBody []byte, header string) bool {
	if header == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.key)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// SecretTokenVerifier compares the header against a static shared secret.
// The Telegram Bot API sends its webhook secret verbatim in
// X-Telegram-Bot-Api-Secret-Token; the body plays no part in the check.
type SecretTokenVerifier struct {
	secret string
}

// NewSecretTokenVerifier creates a verifier for a static secret header.
func NewSecretTokenVerifier(secret string) *SecretTokenVerifier {
	return &SecretTokenVerifier{secret: secret}
}

func (v *SecretTokenVerifier) Verify(_ []byte, header string) bool {
	if v.secret == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.secret), []byte(header)) == 1
}
