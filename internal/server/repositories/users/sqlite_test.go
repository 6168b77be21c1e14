package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/dbx"
	"github.com/dmitrijs2005/userauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  email         TEXT    NOT NULL UNIQUE,
  password_hash BLOB    NOT NULL,
  salt          BLOB    NOT NULL,
  name          TEXT    NOT NULL DEFAULT '',
  active        INTEGER NOT NULL DEFAULT 1,
  created_at    INTEGER NOT NULL,
  updated_at    INTEGER NOT NULL
);`)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC) }
	return r, db
}

func newUser(email, name string) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: []byte("hash-" + email),
		Salt:         []byte("salt-" + email),
		Name:         name,
		Active:       true,
	}
}

func TestSQLiteCreateAndGet(t *testing.T) {
	r, _ := setupSQLite(t)
	ctx := context.Background()

	created, err := r.Create(ctx, newUser("alice@example.com", "Alice"))
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), created.CreatedAt)

	byEmail, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byID, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)
}

func TestSQLiteCreate_DuplicateEmail(t *testing.T) {
	r, _ := setupSQLite(t)
	ctx := context.Background()

	_, err := r.Create(ctx, newUser("alice@example.com", "Alice"))
	require.NoError(t, err)

	_, err = r.Create(ctx, newUser("alice@example.com", "Other"))
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestSQLiteGet_NotFound(t *testing.T) {
	r, _ := setupSQLite(t)
	ctx := context.Background()

	_, err := r.GetByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = r.GetByID(ctx, 99)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteUpdateCredentials(t *testing.T) {
	r, _ := setupSQLite(t)
	ctx := context.Background()

	u, err := r.Create(ctx, newUser("alice@example.com", "Alice"))
	require.NoError(t, err)

	r.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, r.UpdateCredentials(ctx, u.ID, []byte("new-hash"), []byte("new-salt")))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-hash"), got.PasswordHash)
	assert.Equal(t, []byte("new-salt"), got.Salt)
	assert.Equal(t, u.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.ErrorIs(t, r.UpdateCredentials(ctx, 99, []byte("h"), []byte("s")), common.ErrNotFound)
}

func TestSQLiteList_FilterAndPaging(t *testing.T) {
	r, _ := setupSQLite(t)
	ctx := context.Background()

	for _, u := range []*models.User{
		newUser("alice@example.com", "Alice"),
		newUser("bob@example.com", "Bob"),
		newUser("carol@other.org", "Carol"),
	} {
		_, err := r.Create(ctx, u)
		require.NoError(t, err)
	}

	all, err := r.List(ctx, models.UserFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)

	page, err := r.List(ctx, models.UserFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob@example.com", page[0].Email)

	byEmail, err := r.List(ctx, models.UserFilter{Limit: 10, Email: "EXAMPLE"})
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	byName, err := r.List(ctx, models.UserFilter{Limit: 10, Name: "car"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Carol", byName[0].Name)
}

func TestSQLite_RollbackInsideTx(t *testing.T) {
	_, db := setupSQLite(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := NewSQLiteRepository(tx).Create(ctx, newUser("alice@example.com", "Alice")); err != nil {
			return err
		}
		_, err := NewSQLiteRepository(tx).Create(ctx, newUser("alice@example.com", "Again"))
		return err
	})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	_, err = NewSQLiteRepository(db).GetByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}
