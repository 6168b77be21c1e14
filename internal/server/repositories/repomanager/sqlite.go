package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/userauth/internal/dbx"
	"github.com/dmitrijs2005/userauth/internal/server/migrations"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. The pool is
// limited to one connection so transactions serialize.
type SQLiteRepositoryManager struct {
	sqlManager
}

// NewSQLiteRepositoryManager opens the database file at dsn; an empty dsn
// means a private in-memory database.
func NewSQLiteRepositoryManager(ctx context.Context, dsn string) (*SQLiteRepositoryManager, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return newSQLiteManager(db), nil
}

func newSQLiteManager(db *sql.DB) *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{sqlManager{
		db:      db,
		dialect: "sqlite3",
		dir:     migrations.SQLiteDir,
		newUsers: func(db dbx.DBTX) users.Repository {
			return users.NewSQLiteRepository(db)
		},
	}}
}
