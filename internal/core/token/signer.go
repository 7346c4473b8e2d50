// Package token implements the opaque bearer-token scheme: a random session
// identifier signed with a process-wide HMAC secret, backed by a session
// store for the principal payload.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer produces and checks deterministic HMAC-SHA256 signatures over
// session identifiers.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the hex-encoded HMAC-SHA256 of data.
func (s *Signer) Sign(data string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches Sign(data). Comparison is
// constant time after a length fast-check; malformed input yields false,
// never an error.
func (s *Signer) Verify(data, signature string) bool {
	expected := s.Sign(data)
	if len(signature) != len(expected) {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(expected))
}
