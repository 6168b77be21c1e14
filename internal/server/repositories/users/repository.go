// Package users contains the credential store: the Repository contract the
// services depend on and its PostgreSQL, SQLite and in-memory backends.
package users

import (
	"context"

	"github.com/dmitrijs2005/userauth/internal/server/models"
)

// Repository persists user records. Emails passed in are already normalized.
//
// Backends report a missing record as common.ErrNotFound and a taken email
// as common.ErrDuplicateEmail.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateCredentials(ctx context.Context, id int64, hash, salt []byte) error
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
}

const userColumns = `id, email, password_hash, salt, name, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}
