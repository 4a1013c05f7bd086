package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// MySQLTenantDatabases 租户数据库Repository实现
// All statements qualify table names with the tenant database, so one shared
// pool against the registry server reaches every tenant.
type MySQLTenantDatabases struct {
	db *sql.DB
}

func NewMySQLTenantDatabases(db *sql.DB) *MySQLTenantDatabases {
	return &MySQLTenantDatabases{db: db}
}

var _ TenantDatabases = (*MySQLTenantDatabases)(nil)

// quoteDB backtick-quotes a tenant database name. Names come from
// domain.DatabaseNameFor and contain only [a-z0-9_], but quoting keeps the
// DDL well-formed even for reserved words.
func quoteDB(dbName string) string {
	return "`" + dbName + "`"
}

func (r *MySQLTenantDatabases) CreateDatabase(ctx context.Context, dbName string) error {
	if dbName == "" {
		return fmt.Errorf("database name is required")
	}
	_, err := r.db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteDB(dbName))
	if err != nil {
		return fmt.Errorf("failed to create tenant database %s: %w", dbName, err)
	}
	return nil
}

// tenantTables are the five fixed tables every tenant database carries. The
// DDL is identical to the schema of already-provisioned production tenants;
// changing it here would fork the fleet.
func tenantTables(db string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + db + `.usuarios (
			id INT AUTO_INCREMENT PRIMARY KEY,
			nome VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			senha VARCHAR(255) NOT NULL,
			cargo ENUM('cooperador', 'pastor', 'tesoureiro', 'diacono', 'conselho_fiscal') NOT NULL,
			criado_em TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.membros (
			id INT AUTO_INCREMENT PRIMARY KEY,
			nome VARCHAR(255) NOT NULL,
			data_nascimento DATE,
			endereco VARCHAR(255),
			status ENUM('ativo', 'inativo') NOT NULL,
			usuario_id INT,
			CONSTRAINT fk_usuario_id FOREIGN KEY (usuario_id)
				REFERENCES ` + db + `.usuarios(id)
				ON DELETE SET NULL ON UPDATE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.entrada (
			id INT AUTO_INCREMENT PRIMARY KEY,
			observacao VARCHAR(255),
			tipo ENUM('Dizimo', 'Oferta', 'Doacao', 'Campanha') NOT NULL,
			forma_pagamento ENUM('Dinheiro', 'PIX', 'Debito', 'Credito'),
			valor DECIMAL(10, 2) NOT NULL,
			data TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			membro_id INT,
			CONSTRAINT fk_membro_id FOREIGN KEY (membro_id)
				REFERENCES ` + db + `.membros(id)
				ON DELETE SET NULL ON UPDATE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.saida (
			id INT AUTO_INCREMENT PRIMARY KEY,
			observacao VARCHAR(255),
			tipo ENUM('Pagamento', 'Salario', 'Ajuda de Custo') NOT NULL,
			forma_pagamento ENUM('Dinheiro', 'PIX', 'Debito', 'Credito'),
			valor DECIMAL(10, 2) NOT NULL,
			data TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.contas_a_pagar (
			id INT AUTO_INCREMENT PRIMARY KEY,
			observacao VARCHAR(255) NOT NULL,
			valor DECIMAL(10, 2) NOT NULL,
			valor_pago DECIMAL(10, 2) NOT NULL,
			status ENUM('Pago', 'Pendente', 'Pago Parcial', 'Vencida'),
			data_vencimento DATE
		)`,
	}
}

func (r *MySQLTenantDatabases) CreateSchema(ctx context.Context, dbName string) error {
	for _, ddl := range tenantTables(quoteDB(dbName)) {
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create tenant schema for %s: %w", dbName, err)
		}
	}
	return nil
}

func (r *MySQLTenantDatabases) SeedMember(ctx context.Context, dbName, name, address string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+quoteDB(dbName)+`.membros (nome, endereco, status) VALUES (?, ?, 'ativo')`,
		name, address,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to seed member in %s: %w", dbName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get seed member id: %w", err)
	}
	return id, nil
}

func (r *MySQLTenantDatabases) SeedUser(ctx context.Context, dbName, name, email, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+quoteDB(dbName)+`.usuarios (nome, email, senha, cargo) VALUES (?, ?, ?, 'conselho_fiscal')`,
		name, email, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to seed user in %s: %w", dbName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get seed user id: %w", err)
	}
	return id, nil
}

func (r *MySQLTenantDatabases) LinkMemberToUser(ctx context.Context, dbName string, memberID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE `+quoteDB(dbName)+`.membros SET usuario_id = ? WHERE id = ?`,
		userID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to link member to user in %s: %w", dbName, err)
	}
	return nil
}

func (r *MySQLTenantDatabases) UpdateAdminUser(ctx context.Context, dbName, currentEmail, name, newEmail, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE `+quoteDB(dbName)+`.usuarios
		 SET nome = ?, email = ?, senha = ?
		 WHERE email = ? AND cargo = 'conselho_fiscal'`,
		name, newEmail, passwordHash, currentEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin user in %s: %w", dbName, err)
	}
	return nil
}

func (r *MySQLTenantDatabases) AdminCredential(ctx context.Context, dbName string) (string, error) {
	var digest string
	err := r.db.QueryRowContext(ctx,
		`SELECT senha FROM `+quoteDB(dbName)+`.usuarios
		 WHERE cargo = 'conselho_fiscal' ORDER BY id LIMIT 1`,
	).Scan(&digest)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrTenantDatabaseMissing
		}
		// An unknown database surfaces as a driver error (1049), which for
		// the caller means the same thing: nothing to read.
		return "", fmt.Errorf("failed to read admin credential from %s: %w", dbName, err)
	}
	return digest, nil
}

func (r *MySQLTenantDatabases) Drop(ctx context.Context, dbName string) error {
	if dbName == "" {
		return fmt.Errorf("database name is required")
	}
	_, err := r.db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+quoteDB(dbName))
	if err != nil {
		return fmt.Errorf("failed to drop tenant database %s: %w", dbName, err)
	}
	return nil
}
