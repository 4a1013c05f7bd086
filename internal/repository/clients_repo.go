package repository

import (
	"context"
	"errors"

	"church-registry/internal/domain"
)

// Sentinel errors shared by every ClientsRepository implementation. The
// service layer translates these into its user-facing taxonomy.
var (
	// ErrClientNotFound：指定 id 的客户不存在
	ErrClientNotFound = errors.New("client not found")
	// ErrDuplicateChurch：nome_igreja 唯一约束冲突
	ErrDuplicateChurch = errors.New("church name already registered")
)

// ClientUpdate carries a partial update of a registry row. Nil fields are
// left untouched (merge, not replace).
type ClientUpdate struct {
	ResponsibleName  *string
	ChurchName       *string
	Email            *string
	TaxID            *string
	Address          *string
	AccessKeyHash    *string
	VerificationCode *string
	Status           *string
}

// ClientsRepository 客户注册表Repository接口
// Repository层只负责 `clientes` 表的数据访问；跨库操作见 TenantDatabases。
type ClientsRepository interface {
	// EnsureSchema creates the registry tables when they do not exist yet.
	EnsureSchema(ctx context.Context) error

	// Insert adds a new registry row and returns its id.
	// Returns ErrDuplicateChurch when nome_igreja is already taken.
	Insert(ctx context.Context, client *domain.Client) (int64, error)

	// GetByID returns ErrClientNotFound when the id does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Client, error)

	// FindByChurchName returns ErrClientNotFound when no row matches.
	FindByChurchName(ctx context.Context, churchName string) (*domain.Client, error)

	// Update applies the non-nil fields of upd to one row.
	// Returns ErrClientNotFound when the id does not exist.
	Update(ctx context.Context, id int64, upd ClientUpdate) error

	// SetStatus updates only the status column.
	SetStatus(ctx context.Context, id int64, status string) error

	// Delete removes the registry row (the tenant database is dropped
	// separately, before this call).
	Delete(ctx context.Context, id int64) error

	// ListAll returns every registry row ordered by id.
	ListAll(ctx context.Context) ([]*domain.Client, error)
}
