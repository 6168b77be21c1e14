// Package repomanager owns the storage connection and hands out the
// repositories bound to it, either directly or inside a transaction.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	// WithinTx runs fn with a users repository scoped to one transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	Close() error
}

// Open builds the manager for storageType. An empty type selects memory
// when dsn is empty and postgres otherwise.
func Open(ctx context.Context, storageType, dsn string) (RepositoryManager, error) {
	if storageType == "" {
		storageType = StorageMemory
		if dsn != "" {
			storageType = StoragePostgres
		}
	}

	switch storageType {
	case StoragePostgres:
		return NewPostgresRepositoryManager(ctx, dsn)
	case StorageSQLite:
		return NewSQLiteRepositoryManager(ctx, dsn)
	case StorageMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", storageType)
	}
}
