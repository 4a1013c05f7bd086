package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"church-registry/internal/domain"

	"github.com/go-sql-driver/mysql"
)

// MySQLClientsRepository 客户注册表Repository实现
type MySQLClientsRepository struct {
	db *sql.DB
}

func NewMySQLClientsRepository(db *sql.DB) *MySQLClientsRepository {
	return &MySQLClientsRepository{db: db}
}

// 确保实现了接口
var _ ClientsRepository = (*MySQLClientsRepository)(nil)

// isDuplicateKey reports whether err is a MySQL unique-constraint violation
// (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func (r *MySQLClientsRepository) EnsureSchema(ctx context.Context) error {
	// nome_igreja carries a unique key: two concurrent registrations with
	// the same name race past the COUNT pre-check, and this constraint is
	// what actually decides the winner.
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS clientes (
			id INT AUTO_INCREMENT PRIMARY KEY,
			nome_responsavel VARCHAR(255) NOT NULL,
			nome_igreja VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			cnpj_cpf VARCHAR(32) NOT NULL,
			endereco VARCHAR(255) NOT NULL,
			nome_banco VARCHAR(255) NOT NULL,
			chave_acesso VARCHAR(255) NOT NULL,
			codigo_verificacao VARCHAR(32) NOT NULL,
			status ENUM('pendente', 'ativo', 'inativo') NOT NULL DEFAULT 'pendente',
			criado_em TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_clientes_nome_igreja (nome_igreja)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure clientes table: %w", err)
	}
	return nil
}

const clientColumns = `id, nome_responsavel, nome_igreja, email, cnpj_cpf, endereco,
	nome_banco, chave_acesso, codigo_verificacao, status, criado_em`

func scanClient(row interface{ Scan(...any) error }) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID,
		&c.ResponsibleName,
		&c.ChurchName,
		&c.Email,
		&c.TaxID,
		&c.Address,
		&c.DatabaseName,
		&c.AccessKeyHash,
		&c.VerificationCode,
		&c.Status,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MySQLClientsRepository) Insert(ctx context.Context, client *domain.Client) (int64, error) {
	if client == nil {
		return 0, fmt.Errorf("client is required")
	}

	status := client.Status
	if status == "" {
		status = domain.ClientStatusPending
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clientes
			(nome_responsavel, nome_igreja, email, cnpj_cpf, endereco,
			 nome_banco, chave_acesso, codigo_verificacao, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ResponsibleName,
		client.ChurchName,
		client.Email,
		client.TaxID,
		client.Address,
		client.DatabaseName,
		client.AccessKeyHash,
		client.VerificationCode,
		status,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateChurch
		}
		return 0, fmt.Errorf("failed to insert client: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted client id: %w", err)
	}
	return id, nil
}

func (r *MySQLClientsRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clientes WHERE id = ?`, id)

	client, err := scanClient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (r *MySQLClientsRepository) FindByChurchName(ctx context.Context, churchName string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clientes WHERE nome_igreja = ?`, churchName)

	client, err := scanClient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client by church name: %w", err)
	}
	return client, nil
}

func (r *MySQLClientsRepository) Update(ctx context.Context, id int64, upd ClientUpdate) error {
	sets := []string{}
	args := []any{}

	add := func(column string, val *string) {
		if val != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *val)
		}
	}
	add("nome_responsavel", upd.ResponsibleName)
	add("nome_igreja", upd.ChurchName)
	add("email", upd.Email)
	add("cnpj_cpf", upd.TaxID)
	add("endereco", upd.Address)
	add("chave_acesso", upd.AccessKeyHash)
	add("codigo_verificacao", upd.VerificationCode)
	add("status", upd.Status)

	if len(sets) == 0 {
		return fmt.Errorf("no fields to update")
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE clientes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateChurch
		}
		return fmt.Errorf("failed to update client: %w", err)
	}

	// RowsAffected is 0 both for a missing row and for a no-op update; tell
	// them apart so a same-values update is not reported as not found.
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLClientsRepository) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clientes SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set client status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *MySQLClientsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clientes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (r *MySQLClientsRepository) ListAll(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clientes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []*domain.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}
