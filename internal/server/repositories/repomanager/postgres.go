package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/userauth/internal/dbx"
	"github.com/dmitrijs2005/userauth/internal/server/migrations"
	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over a pgx
// connection pool.
type PostgresRepositoryManager struct {
	sqlManager
}

// NewPostgresRepositoryManager opens and pings the database at dsn.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newPostgresManager(db), nil
}

func newPostgresManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{sqlManager{
		db:      db,
		dialect: "pgx",
		dir:     migrations.PostgresDir,
		newUsers: func(db dbx.DBTX) users.Repository {
			return users.NewPostgresRepository(db)
		},
	}}
}
