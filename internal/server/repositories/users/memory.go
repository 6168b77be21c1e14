package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/server/models"
)

// MemoryRepository keeps users in process memory. Records are cloned on the
// way in and out.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[int64]*models.User
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]*models.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}

	r.nextID++
	stored := user.Clone()
	stored.ID = r.nextID
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return stored.Clone(), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) UpdateCredentials(_ context.Context, id int64, hash, salt []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = append([]byte(nil), hash...)
	u.Salt = append([]byte(nil), salt...)
	u.UpdatedAt = r.now().UTC()
	return nil
}

// SetActive flips the active flag; deactivation is an operator concern the
// SQL backends leave to the database.
func (r *MemoryRepository) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Active = active
	return nil
}

func (r *MemoryRepository) List(_ context.Context, filter models.UserFilter) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email := strings.ToLower(filter.Email)
	name := strings.ToLower(filter.Name)

	var result []*models.User
	skipped := 0
	for id := int64(1); id <= r.nextID; id++ {
		u, ok := r.byID[id]
		if !ok {
			continue
		}
		if email != "" && !strings.Contains(strings.ToLower(u.Email), email) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(u.Name), name) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
		result = append(result, u.Clone())
	}
	return result, nil
}
