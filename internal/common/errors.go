// Package common defines shared constants and sentinel errors used across
// the server, transports and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors.
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Credential errors. ErrInvalidCredentials deliberately covers unknown
	// email, wrong password and inactive accounts alike.
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidCredentialFormat = errors.New("invalid credential format")

	// Token errors.
	ErrTokenMalformed   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidTTL       = errors.New("token ttl must be positive")

	// Gate errors.
	ErrUnauthorized = errors.New("unauthorized")
)

// IsAuthError reports whether err should surface to a caller as an
// authentication failure (HTTP 401 / gRPC Unauthenticated).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired)
}
