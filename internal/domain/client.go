package domain

import (
	"database/sql"
	"strings"
	"time"
)

// Client statuses (stored values kept compatible with the production
// `clientes` table, which predates this service).
const (
	ClientStatusPending  = "pendente"
	ClientStatusActive   = "ativo"
	ClientStatusInactive = "inativo"
)

// Client 领域模型 — one registered church organization (row in `clientes`).
// One client owns one dedicated tenant database named by DatabaseName.
type Client struct {
	// 主键
	ID int64 `db:"id"` // AUTO_INCREMENT, PRIMARY KEY

	// 档案信息
	ResponsibleName string `db:"nome_responsavel"` // VARCHAR(255), NOT NULL
	ChurchName      string `db:"nome_igreja"`      // VARCHAR(255), NOT NULL, UNIQUE
	Email           string `db:"email"`            // VARCHAR(255), NOT NULL
	TaxID           string `db:"cnpj_cpf"`         // VARCHAR(32), NOT NULL
	Address         string `db:"endereco"`         // VARCHAR(255), NOT NULL

	// 供应(provisioning)字段
	DatabaseName     string `db:"nome_banco"`         // slug of ChurchName, fixed at creation
	AccessKeyHash    string `db:"chave_acesso"`       // bcrypt digest, never the plaintext
	VerificationCode string `db:"codigo_verificacao"` // plaintext, used by the activation flow

	// 状态
	Status    string    `db:"status"`    // pendente/ativo/inativo, DEFAULT 'pendente'
	CreatedAt time.Time `db:"criado_em"` // TIMESTAMP DEFAULT CURRENT_TIMESTAMP
}

// ClientListing is a Client enriched for the admin listing: the credential
// digest and verification code are re-read from the tenant side at read time
// and are null when that secondary lookup fails.
type ClientListing struct {
	Client
	LiveAccessKeyHash    sql.NullString
	LiveVerificationCode sql.NullString
}

// DatabaseNameFor derives the tenant database name from the church name:
// lowercased, whitespace collapsed to underscores, every other character
// outside [a-z0-9_] dropped. The result is fixed at provisioning time and
// never regenerated, so renaming the church does not rename the database.
func DatabaseNameFor(churchName string) string {
	name := strings.ToLower(strings.TrimSpace(churchName))
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
