package domain

import "time"

// Admin-panel roles (`usuarios.role` in the registry database — not to be
// confused with the per-tenant usuarios table).
const (
	AdminRoleAdmin   = "admin"
	AdminRoleManager = "gerente"
)

// AdminUser is an operator of the onboarding panel itself, stored in the
// registry database.
type AdminUser struct {
	ID           int64     `db:"id"`
	Name         string    `db:"nome"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"senha"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"criado_em"`
}
