// Package services contains server-side business logic. This file implements
// UserService: registration, login, token authentication and password reset.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/dmitrijs2005/userauth/internal/server/models"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
)

const (
	DefaultTokenTTL  = time.Hour
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PasswordHasher derives and checks password digests.
type PasswordHasher interface {
	Hash(password string) (digest, salt []byte, err error)
	Verify(password string, digest, salt []byte) (bool, error)
}

// TokenCodec signs and verifies session tokens.
type TokenCodec interface {
	Encode(claims *auth.Claims, ttl time.Duration) (string, error)
	Decode(token string) (*auth.Claims, error)
	Now() time.Time
}

// Session is an issued token together with the claims it carries.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Claims    *auth.Claims
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users   []*models.User
	HasNext bool
}

// UserService holds no mutable state and is safe for concurrent use.
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	codec       TokenCodec
	tokenTTL    time.Duration
	log         logging.Logger

	// verified against on unknown emails so a miss costs one derivation too
	dummyDigest []byte
	dummySalt   []byte
}

// NewUserService wires the service. A zero tokenTTL means DefaultTokenTTL.
func NewUserService(m repomanager.RepositoryManager, hasher PasswordHasher, codec TokenCodec, tokenTTL time.Duration, log logging.Logger) *UserService {
	if tokenTTL == 0 {
		tokenTTL = DefaultTokenTTL
	}
	if log == nil {
		log = logging.Nop{}
	}
	s := &UserService{
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		tokenTTL:    tokenTTL,
		log:         log.With("module", "user_service"),
	}
	s.dummyDigest, s.dummySalt, _ = hasher.Hash(string(common.GenerateRandByteArray(16)))
	return s
}

// Register validates the input, hashes the password and stores an active
// user. A taken email yields common.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}

	digest, salt, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	user, err := s.repomanager.Users().Create(ctx, &models.User{
		Email:        email,
		PasswordHash: digest,
		Salt:         salt,
		Name:         strings.TrimSpace(name),
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		s.log.Error(ctx, "create user failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and issues a token. Unknown email, inactive
// account and wrong password all return common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "lookup user failed", "error", err)
			return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
		}
		_, _ = s.hasher.Verify(password, s.dummyDigest, s.dummySalt)
		return nil, common.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash, user.Salt)
	if err != nil {
		s.log.Warn(ctx, "stored credentials unusable", "user_id", user.ID, "error", err)
		return nil, common.ErrInvalidCredentials
	}
	if !ok || !user.Active {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user, s.tokenTTL)
}

// Authenticate verifies token and returns its claims. Codec failures
// (malformed, bad signature, expired) are returned unchanged.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, common.ErrUnauthorized
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "error", err)
		return nil, err
	}
	return claims, nil
}

// Me returns the claims of the caller's token.
func (s *UserService) Me(ctx context.Context, token string) (*auth.Claims, error) {
	return s.Authenticate(ctx, token)
}

// ResetPassword replaces the password of the account identified by email
// and returns a fresh token expiring strictly after currentToken.
//
// The caller may only reset its own account: email must match the token's
// email claim and the stored record's id must match the token's id.
func (s *UserService) ResetPassword(ctx context.Context, currentToken, email, newPassword string) (*Session, error) {
	claims, err := s.Authenticate(ctx, currentToken)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	email = models.NormalizeEmail(email)
	if email != claims.Email {
		s.log.Warn(ctx, "reset for another account refused", "user_id", claims.UserID)
		return nil, fmt.Errorf("%w: email does not match token", common.ErrUnauthorized)
	}
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}

	digest, salt, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	var user *models.User
	err = s.repomanager.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		u, err := repo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u.ID != claims.UserID || !u.Active {
			return fmt.Errorf("%w: account no longer matches token", common.ErrUnauthorized)
		}
		if err := repo.UpdateCredentials(ctx, u.ID, digest, salt); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrUnauthorized) {
			return nil, err
		}
		s.log.Error(ctx, "reset password failed", "user_id", claims.UserID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return s.issue(user, s.ttlAfter(claims))
}

// GetUser returns the user with id or common.ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return u, nil
}

// ListUsers returns one page of users ordered by id. Limit defaults to
// DefaultPageLimit and is capped at MaxPageLimit.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter) (*UserPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	limit := filter.Limit
	filter.Limit++

	list, err := s.repomanager.Users().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	page := &UserPage{Users: list}
	if len(list) > limit {
		page.Users = list[:limit]
		page.HasNext = true
	}
	return page, nil
}

func (s *UserService) issue(user *models.User, ttl time.Duration) (*Session, error) {
	claims := &auth.Claims{UserID: user.ID, Email: user.Email, Name: user.Name}
	token, err := s.codec.Encode(claims, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Claims: claims}, nil
}

// ttlAfter stretches the configured TTL when needed so the new exp lands
// at least one second after the old one.
func (s *UserService) ttlAfter(old *auth.Claims) time.Duration {
	ttl := s.tokenTTL
	if old.ExpiresAt == nil {
		return ttl
	}
	now := s.codec.Now()
	if now.Add(ttl).Truncate(time.Second).After(old.ExpiresAt.Time) {
		return ttl
	}
	return old.ExpiresAt.Add(time.Second).Sub(now)
}
