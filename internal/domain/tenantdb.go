package domain

import (
	"database/sql"
	"time"
)

// User roles in a tenant database (`usuarios.cargo` ENUM values).
const (
	RoleCooperator    = "cooperador"
	RolePastor        = "pastor"
	RoleTreasurer     = "tesoureiro"
	RoleDeacon        = "diacono"
	RoleFiscalCouncil = "conselho_fiscal"
)

// Member statuses (`membros.status`).
const (
	MemberStatusActive   = "ativo"
	MemberStatusInactive = "inativo"
)

// Income categories (`entrada.tipo`).
const (
	IncomeTithe    = "Dizimo"
	IncomeOffering = "Oferta"
	IncomeDonation = "Doacao"
	IncomeCampaign = "Campanha"
)

// Expense categories (`saida.tipo`).
const (
	ExpenseCategoryPayment   = "Pagamento"
	ExpenseCategorySalary    = "Salario"
	ExpenseCategoryAllowance = "Ajuda de Custo"
)

// Payment methods shared by entrada and saida (`forma_pagamento`).
const (
	PaymentCash   = "Dinheiro"
	PaymentPix    = "PIX"
	PaymentDebit  = "Debito"
	PaymentCredit = "Credito"
)

// Payable statuses (`contas_a_pagar.status`).
const (
	PayableStatusPaid    = "Pago"
	PayableStatusPending = "Pendente"
	PayableStatusPartial = "Pago Parcial"
	PayableStatusOverdue = "Vencida"
)

// TenantUser 对应租户库 `usuarios` 表
type TenantUser struct {
	ID           int64     `db:"id"`
	Name         string    `db:"nome"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"senha"` // bcrypt digest; seed user reuses the access-key digest
	Role         string    `db:"cargo"`
	CreatedAt    time.Time `db:"criado_em"`
}

// TenantMember 对应租户库 `membros` 表
type TenantMember struct {
	ID        int64          `db:"id"`
	Name      string         `db:"nome"`
	BirthDate sql.NullTime   `db:"data_nascimento"`
	Address   sql.NullString `db:"endereco"`
	Status    string         `db:"status"`
	UserID    sql.NullInt64  `db:"usuario_id"` // ON DELETE SET NULL
}

// IncomeEntry 对应租户库 `entrada` 表
type IncomeEntry struct {
	ID            int64          `db:"id"`
	Note          sql.NullString `db:"observacao"`
	Category      string         `db:"tipo"`
	PaymentMethod sql.NullString `db:"forma_pagamento"`
	Amount        string         `db:"valor"` // DECIMAL(10,2), kept as string to avoid float drift
	Date          time.Time      `db:"data"`
	MemberID      sql.NullInt64  `db:"membro_id"` // ON DELETE SET NULL
}

// ExpenseEntry 对应租户库 `saida` 表
type ExpenseEntry struct {
	ID            int64          `db:"id"`
	Note          sql.NullString `db:"observacao"`
	Category      string         `db:"tipo"`
	PaymentMethod sql.NullString `db:"forma_pagamento"`
	Amount        string         `db:"valor"` // DECIMAL(10,2)
	Date          time.Time      `db:"data"`
}

// Payable 对应租户库 `contas_a_pagar` 表
type Payable struct {
	ID         int64          `db:"id"`
	Note       string         `db:"observacao"`
	AmountDue  string         `db:"valor"`      // DECIMAL(10,2)
	AmountPaid string         `db:"valor_pago"` // DECIMAL(10,2)
	Status     sql.NullString `db:"status"`
	DueDate    sql.NullTime   `db:"data_vencimento"`
}
