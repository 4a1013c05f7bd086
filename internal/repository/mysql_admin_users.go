package repository

import (
	"context"
	"database/sql"
	"fmt"

	"church-registry/internal/domain"
)

// MySQLAdminUsersRepository 管理面板用户Repository实现
type MySQLAdminUsersRepository struct {
	db *sql.DB
}

func NewMySQLAdminUsersRepository(db *sql.DB) *MySQLAdminUsersRepository {
	return &MySQLAdminUsersRepository{db: db}
}

var _ AdminUsersRepository = (*MySQLAdminUsersRepository)(nil)

func (r *MySQLAdminUsersRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS usuarios (
			id INT AUTO_INCREMENT PRIMARY KEY,
			nome VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			senha VARCHAR(255) NOT NULL,
			role ENUM('admin', 'gerente') NOT NULL,
			criado_em TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_usuarios_email (email)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure usuarios table: %w", err)
	}
	return nil
}

func (r *MySQLAdminUsersRepository) Insert(ctx context.Context, user *domain.AdminUser) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (nome, email, senha, role) VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Role,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrAdminUserExists
		}
		return 0, fmt.Errorf("failed to insert admin user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted admin user id: %w", err)
	}
	return id, nil
}

func (r *MySQLAdminUsersRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nome, email, senha, role, criado_em FROM usuarios WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find admin user: %w", err)
	}
	return &u, nil
}
