package common

import (
	"crypto/rand"
	"strings"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray overwrites b with zeros. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// BearerToken extracts the token from an "authorization" value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func BearerToken(value string) (string, bool) {
	if len(value) < len(BearerPrefix) || !strings.EqualFold(value[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(value[len(BearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
