package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userauth/internal/dbx"
	"github.com/dmitrijs2005/userauth/internal/server/migrations"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlManager is shared by the database/sql backed managers; they differ in
// goose dialect, migration directory and repository constructor.
type sqlManager struct {
	db       *sql.DB
	dialect  string
	dir      string
	newUsers func(dbx.DBTX) users.Repository
}

func (m *sqlManager) Users() users.Repository {
	return m.newUsers(m.db)
}

func (m *sqlManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, m.newUsers(tx))
	})
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *sqlManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, m.dir)
}

func (m *sqlManager) Close() error {
	return m.db.Close()
}
