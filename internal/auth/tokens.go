package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const secretBytes = 32

// newSecret mints a 256-bit random value rendered as 64 hex characters, used
// for both login tokens and session credentials.
func newSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// shortToken is what makes it into logs and audit records, never the full
// secret.
func shortToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
