package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"church-registry/internal/credentials"
	"church-registry/internal/domain"
	"church-registry/internal/repository"
	"church-registry/internal/store"

	"go.uber.org/zap"
)

const (
	msgClientNotFound   = "Cliente não encontrado."
	msgClientGoneOrKept = "Cliente não encontrado ou já foi deletado."
	msgUpdateFailed     = "Erro ao atualizar cliente."
	msgUpdateOK         = "Cliente atualizado com sucesso."
	msgDeleteFailed     = "Erro ao deletar cliente."
	msgListFailed       = "Erro ao buscar clientes"
	msgInvalidStatus    = "Status inválido."
	msgInvalidCode      = "Código de verificação inválido."
	msgInconsistent     = "Cliente sem banco de dados associado."
)

// credentialCacheTTL bounds how stale the listing's enriched credential
// fields can be.
const credentialCacheTTL = 30 * time.Second

// UpdateRequest is a partial update: nil fields keep their stored value.
// AccessKey nil means "rotate": a fresh key is generated; either way the
// final key is re-hashed and written to both the registry row and the
// tenant's seed user.
type UpdateRequest struct {
	ResponsibleName *string
	ChurchName      *string
	Email           *string
	TaxID           *string
	Address         *string
	AccessKey       *string
}

// UpdateResult returns the plaintext of the (possibly new) access key — the
// only exposure point besides registration.
type UpdateResult struct {
	AccessKey string
	Message   string
}

// Lifecycle 租户生命周期管理服务
// Orchestrates update/status/activate/delete/list across the registry row
// and the client's own database, keeping both sides consistent by explicit
// two-step resolution (registry row first, tenant database second).
type Lifecycle struct {
	clients repository.ClientsRepository
	tenants repository.TenantDatabases
	cache   store.KV // optional, may be nil
	logger  *zap.Logger
}

func NewLifecycle(clients repository.ClientsRepository, tenants repository.TenantDatabases, cache store.KV, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{clients: clients, tenants: tenants, cache: cache, logger: logger}
}

// Update applies the non-nil profile fields and rotates or replaces the
// access key. The tenant-side seed user is matched by its current email,
// since no stable foreign key crosses the database boundary.
func (l *Lifecycle) Update(ctx context.Context, id int64, req UpdateRequest) (*UpdateResult, error) {
	current, err := l.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, &NotFoundError{Msg: msgClientNotFound}
		}
		return nil, &ProvisioningError{Msg: msgUpdateFailed, Err: err}
	}
	if current.DatabaseName == "" {
		// A registry row without a database name cannot be propagated to
		// the tenant side; surface it instead of half-updating.
		return nil, &ProvisioningError{Msg: msgInconsistent, Err: repository.ErrTenantDatabaseMissing}
	}

	accessKey := credentials.NewAccessKey()
	if req.AccessKey != nil && *req.AccessKey != "" {
		accessKey = *req.AccessKey
	}
	accessKeyHash, err := credentials.HashKey(accessKey)
	if err != nil {
		return nil, &ProvisioningError{Msg: msgUpdateFailed, Err: err}
	}

	upd := repository.ClientUpdate{
		ResponsibleName: req.ResponsibleName,
		ChurchName:      req.ChurchName,
		Email:           req.Email,
		TaxID:           req.TaxID,
		Address:         req.Address,
		AccessKeyHash:   &accessKeyHash,
	}
	if err := l.clients.Update(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			return nil, &NotFoundError{Msg: msgClientNotFound}
		case errors.Is(err, repository.ErrDuplicateChurch):
			return nil, &ConflictError{Msg: msgDuplicateChurch}
		default:
			return nil, &ProvisioningError{Msg: msgUpdateFailed, Err: err}
		}
	}

	// Propagate to the tenant-side seed user. Name/email fall back to the
	// stored values when the request leaves them out.
	name := current.ResponsibleName
	if req.ResponsibleName != nil {
		name = *req.ResponsibleName
	}
	email := current.Email
	if req.Email != nil {
		email = *req.Email
	}
	if err := l.tenants.UpdateAdminUser(ctx, current.DatabaseName, current.Email, name, email, accessKeyHash); err != nil {
		// The registry row is already updated; report, don't roll back.
		l.logger.Error("tenant user update failed after registry update",
			zap.Int64("client_id", id),
			zap.String("database", current.DatabaseName),
			zap.Error(err))
		return nil, &ProvisioningError{Msg: msgUpdateFailed, Err: err}
	}

	l.invalidateCredential(ctx, current.DatabaseName)

	return &UpdateResult{AccessKey: accessKey, Message: msgUpdateOK}, nil
}

// SetStatus locks or unlocks a client without touching its database.
func (l *Lifecycle) SetStatus(ctx context.Context, id int64, status string) error {
	if status != domain.ClientStatusActive && status != domain.ClientStatusInactive {
		return &ValidationError{Msg: msgInvalidStatus}
	}
	if err := l.clients.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return &NotFoundError{Msg: msgClientNotFound}
		}
		return &ProvisioningError{Msg: msgUpdateFailed, Err: err}
	}
	return nil
}

// Activate promotes a pending client to ativo when the submitted
// verification code matches. Activating an already-active client with the
// right code is a no-op success.
func (l *Lifecycle) Activate(ctx context.Context, id int64, code string) error {
	client, err := l.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return &NotFoundError{Msg: msgClientNotFound}
		}
		return &ProvisioningError{Msg: msgUpdateFailed, Err: err}
	}
	if code == "" || code != client.VerificationCode {
		return &ValidationError{Msg: msgInvalidCode}
	}
	if err := l.clients.SetStatus(ctx, id, domain.ClientStatusActive); err != nil {
		return &ProvisioningError{Msg: msgUpdateFailed, Err: err}
	}
	return nil
}

// Delete drops the client's database first and the registry row second, so
// an interrupted delete leaves a registry tombstone pointing at an
// already-dropped database rather than an orphaned database with no record.
func (l *Lifecycle) Delete(ctx context.Context, id int64) error {
	client, err := l.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return &NotFoundError{Msg: msgClientNotFound}
		}
		return &ProvisioningError{Msg: msgDeleteFailed, Err: err}
	}

	if client.DatabaseName != "" {
		if err := l.tenants.Drop(ctx, client.DatabaseName); err != nil {
			return &ProvisioningError{Msg: msgDeleteFailed, Err: err}
		}
		l.invalidateCredential(ctx, client.DatabaseName)
	}

	if err := l.clients.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			// Lost a race with a concurrent delete after the drop; the end
			// state is the desired one but the caller asked to delete a
			// client that no longer exists.
			return &NotFoundError{Msg: msgClientGoneOrKept}
		}
		return &ProvisioningError{Msg: msgDeleteFailed, Err: err}
	}

	l.logger.Info("client deleted",
		zap.Int64("client_id", id),
		zap.String("database", client.DatabaseName))
	return nil
}

// List returns every registry row enriched with the live credential digest
// read back from the client's own database. A failed per-row lookup nulls
// the enriched fields instead of failing the listing.
func (l *Lifecycle) List(ctx context.Context) ([]*domain.ClientListing, error) {
	clients, err := l.clients.ListAll(ctx)
	if err != nil {
		return nil, &ProvisioningError{Msg: msgListFailed, Err: err}
	}

	out := make([]*domain.ClientListing, 0, len(clients))
	for _, c := range clients {
		item := &domain.ClientListing{Client: *c}
		if digest, err := l.liveCredential(ctx, c.DatabaseName); err == nil {
			item.LiveAccessKeyHash = sql.NullString{String: digest, Valid: true}
			item.LiveVerificationCode = sql.NullString{String: c.VerificationCode, Valid: true}
		} else {
			l.logger.Warn("credential enrichment failed",
				zap.Int64("client_id", c.ID),
				zap.String("database", c.DatabaseName),
				zap.Error(err))
		}
		out = append(out, item)
	}
	return out, nil
}

func credentialCacheKey(dbName string) string { return "cred:" + dbName }

func (l *Lifecycle) liveCredential(ctx context.Context, dbName string) (string, error) {
	if dbName == "" {
		return "", repository.ErrTenantDatabaseMissing
	}
	if l.cache != nil {
		if v, err := l.cache.Get(ctx, credentialCacheKey(dbName)); err == nil {
			return v, nil
		}
	}
	digest, err := l.tenants.AdminCredential(ctx, dbName)
	if err != nil {
		return "", err
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, credentialCacheKey(dbName), digest, credentialCacheTTL); err != nil {
			l.logger.Debug("credential cache set failed", zap.Error(err))
		}
	}
	return digest, nil
}

func (l *Lifecycle) invalidateCredential(ctx context.Context, dbName string) {
	if l.cache == nil || dbName == "" {
		return
	}
	if err := l.cache.Del(ctx, credentialCacheKey(dbName)); err != nil {
		l.logger.Debug("credential cache invalidation failed", zap.Error(err))
	}
}
