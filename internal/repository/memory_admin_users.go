package repository

import (
	"context"
	"sync"
	"time"

	"church-registry/internal/domain"
)

// MemoryAdminUsersRepository backs tests and the DB-disabled dev mode.
type MemoryAdminUsersRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]domain.AdminUser // keyed by email
}

func NewMemoryAdminUsersRepository() *MemoryAdminUsersRepository {
	return &MemoryAdminUsersRepository{nextID: 1, users: map[string]domain.AdminUser{}}
}

var _ AdminUsersRepository = (*MemoryAdminUsersRepository)(nil)

func (r *MemoryAdminUsersRepository) EnsureSchema(context.Context) error { return nil }

func (r *MemoryAdminUsersRepository) Insert(_ context.Context, user *domain.AdminUser) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return 0, ErrAdminUserExists
	}
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.users[stored.Email] = stored
	r.nextID++
	return stored.ID, nil
}

func (r *MemoryAdminUsersRepository) FindByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	out := u
	return &out, nil
}
