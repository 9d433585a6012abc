// Package security contains everything related to the security of user data
package security

import (
	"claudecode-es/backend/pkg/util"
	"regexp"
)

// TokenSize is the number of random bytes behind magic link and session tokens.
// Tokens are hex encoded so they end up twice as long.
const TokenSize = 32

var tokenRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewToken generates an opaque token with 256 bits of entropy
func NewToken() (string, error) {
	return util.GenerateToken(TokenSize)
}

// IsTokenShaped reports whether t looks like something NewToken produced.
// Used to skip store lookups for obviously forged values.
func IsTokenShaped(t string) bool {
	return tokenRegex.MatchString(t)
}
