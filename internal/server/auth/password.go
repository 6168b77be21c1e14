// Package auth holds the credential core: PBKDF2 password hashing, the HS256
// session token codec and the request-context helpers used by the gates.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/userauth/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	MinIterations = 100_000
	MinKeyLength  = 32
	MinSaltLength = 16

	DefaultIterations = 210_000
	DefaultKeyLength  = 32
	DefaultSaltLength = 16
)

// HasherConfig tunes the PBKDF2-HMAC-SHA256 derivation. Zero fields take
// the defaults.
type HasherConfig struct {
	Iterations int
	KeyLength  int
	SaltLength int
}

// Hasher derives and verifies salted password digests. It is immutable after
// construction and safe for concurrent use.
type Hasher struct {
	cfg HasherConfig
}

// NewHasher validates cfg against the minimum work factors.
func NewHasher(cfg HasherConfig) (*Hasher, error) {
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = DefaultKeyLength
	}
	if cfg.SaltLength == 0 {
		cfg.SaltLength = DefaultSaltLength
	}

	if cfg.Iterations < MinIterations {
		return nil, fmt.Errorf("pbkdf2 iterations must be at least %d, got %d", MinIterations, cfg.Iterations)
	}
	if cfg.KeyLength < MinKeyLength {
		return nil, fmt.Errorf("pbkdf2 key length must be at least %d, got %d", MinKeyLength, cfg.KeyLength)
	}
	if cfg.SaltLength < MinSaltLength {
		return nil, fmt.Errorf("salt length must be at least %d, got %d", MinSaltLength, cfg.SaltLength)
	}

	return &Hasher{cfg: cfg}, nil
}

// Config returns the effective parameters.
func (h *Hasher) Config() HasherConfig { return h.cfg }

// Hash derives a digest for password under a freshly generated salt.
func (h *Hasher) Hash(password string) (digest, salt []byte, err error) {
	salt = common.GenerateRandByteArray(h.cfg.SaltLength)
	return h.Derive(password, salt), salt, nil
}

// Derive is the deterministic half of Hash.
func (h *Hasher) Derive(password string, salt []byte) []byte {
	return h.derive(password, salt, h.cfg.KeyLength)
}

// Verify recomputes the digest of password under salt and compares it with
// digest in constant time. A wrong password yields (false, nil); only a
// salt or digest too short to have come from Hash is an error.
func (h *Hasher) Verify(password string, digest, salt []byte) (bool, error) {
	if len(salt) < MinSaltLength {
		return false, fmt.Errorf("%w: salt is %d bytes", common.ErrInvalidCredentialFormat, len(salt))
	}
	if len(digest) < MinKeyLength {
		return false, fmt.Errorf("%w: digest is %d bytes", common.ErrInvalidCredentialFormat, len(digest))
	}

	candidate := h.derive(password, salt, len(digest))
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(candidate, digest) == 1, nil
}

func (h *Hasher) derive(password string, salt []byte, keyLen int) []byte {
	return pbkdf2.Key([]byte(password), salt, h.cfg.Iterations, keyLen, sha256.New)
}
