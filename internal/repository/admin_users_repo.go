package repository

import (
	"context"
	"errors"

	"church-registry/internal/domain"
)

// ErrAdminUserExists：email 已被注册
var ErrAdminUserExists = errors.New("admin user already registered")

// AdminUsersRepository stores the onboarding panel's own operators
// (`usuarios` in the registry database).
type AdminUsersRepository interface {
	EnsureSchema(ctx context.Context) error

	// Insert returns ErrAdminUserExists when the email is taken.
	Insert(ctx context.Context, user *domain.AdminUser) (int64, error)

	// FindByEmail returns (nil, nil) when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
}
