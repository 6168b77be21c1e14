package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/userauth/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. WithinTx serializes
// callers but cannot roll back writes already made by fn.
type MemoryRepositoryManager struct {
	mu    sync.Mutex
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

// UserStore exposes the concrete store for operations outside the Repository
// contract, such as deactivating an account.
func (m *MemoryRepositoryManager) UserStore() *users.MemoryRepository { return m.users }

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.users)
}

func (m *MemoryRepositoryManager) Close() error { return nil }
