package common

const (
	// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
	// carries the bearer token.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix precedes the token in the authorization value.
	BearerPrefix = "Bearer "

	// DefaultAuthCookieName is the cookie consulted when no header is sent.
	DefaultAuthCookieName = "auth_token"
)
