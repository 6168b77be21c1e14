package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the user's identity plus the registered
// claims, of which only exp is set by this package.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes HS256 session tokens with a shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customizes a Codec.
type CodecOption func(*Codec)

// WithClock replaces the wall clock used for exp stamping and validation.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a Codec signing with a private copy of secret.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	c := &Codec{secret: append([]byte(nil), secret...), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now reports the codec's current time.
func (c *Codec) Now() time.Time { return c.now() }

// Encode stamps claims.ExpiresAt with now+ttl (whole seconds, UTC) and returns
// the signed token. ttl must be positive so no token is born expired.
func (c *Codec) Encode(claims *Claims, ttl time.Duration) (string, error) {
	if ttl < time.Second {
		return "", common.ErrInvalidTTL
	}
	claims.ExpiresAt = jwt.NewNumericDate(c.now().UTC().Add(ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies token and returns its claims. The signature is checked
// before the claims, so a tampered exp surfaces as ErrInvalidSignature.
func (c *Codec) Decode(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !parsed.Valid {
		return nil, common.ErrInvalidSignature
	}

	claims.ExpiresAt = jwt.NewNumericDate(claims.ExpiresAt.UTC())
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}
