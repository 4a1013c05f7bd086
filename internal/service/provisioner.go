package service

import (
	"context"
	"errors"

	"church-registry/internal/credentials"
	"church-registry/internal/domain"
	"church-registry/internal/repository"

	"go.uber.org/zap"
)

// User-facing messages of the registration flow (kept identical to what the
// admin frontend expects).
const (
	msgAllFieldsRequired = "Todos os campos são obrigatórios!"
	msgDuplicateChurch   = "Já existe um cliente cadastrado com o nome dessa igreja."
	msgRegisterFailed    = "Erro ao cadastrar cliente!"
	msgRegisterOK        = "Cliente cadastrado, banco de dados criado e usuário/membro associados com sucesso!"
)

// RegisterRequest carries a raw registration payload; the provisioner
// itself rejects empty fields.
type RegisterRequest struct {
	ResponsibleName string
	ChurchName      string
	Email           string
	TaxID           string
	Address         string
}

// ProvisionResult is the only place the plaintext access key is ever
// exposed. It is returned once to the caller and not stored anywhere.
type ProvisionResult struct {
	ClientID     int64
	DatabaseName string
	AccessKey    string
	Message      string
}

// Provisioner 租户供应服务
// Creates the registry row, the dedicated database with its fixed schema,
// and the seed member/user pair for one new client.
type Provisioner struct {
	clients repository.ClientsRepository
	tenants repository.TenantDatabases
	logger  *zap.Logger
}

func NewProvisioner(clients repository.ClientsRepository, tenants repository.TenantDatabases, logger *zap.Logger) *Provisioner {
	return &Provisioner{clients: clients, tenants: tenants, logger: logger}
}

// Provision runs the whole registration workflow. The sequence is not
// transactional: MySQL cannot roll back CREATE DATABASE or DDL, so a failure
// after the registry insert leaves a partially provisioned client behind and
// surfaces as ProvisioningError. The caller must not blindly re-invoke after
// a partial success; re-running re-inserts seed rows and conflicts on the
// registry insert.
func (p *Provisioner) Provision(ctx context.Context, req RegisterRequest) (*ProvisionResult, error) {
	if req.ResponsibleName == "" || req.ChurchName == "" || req.Email == "" ||
		req.TaxID == "" || req.Address == "" {
		return nil, &ValidationError{Msg: msgAllFieldsRequired}
	}

	// Fast-path duplicate check. The UNIQUE KEY on nome_igreja is what
	// decides concurrent registrations; this check only gives the common
	// case a clean answer before any token is generated.
	if _, err := p.clients.FindByChurchName(ctx, req.ChurchName); err == nil {
		return nil, &ConflictError{Msg: msgDuplicateChurch}
	} else if !errors.Is(err, repository.ErrClientNotFound) {
		return nil, &ProvisioningError{Msg: msgRegisterFailed, Err: err}
	}

	dbName := domain.DatabaseNameFor(req.ChurchName)

	accessKey := credentials.NewAccessKey()
	verificationCode := credentials.NewVerificationCode()
	accessKeyHash, err := credentials.HashKey(accessKey)
	if err != nil {
		return nil, &ProvisioningError{Msg: msgRegisterFailed, Err: err}
	}

	client := &domain.Client{
		ResponsibleName:  req.ResponsibleName,
		ChurchName:       req.ChurchName,
		Email:            req.Email,
		TaxID:            req.TaxID,
		Address:          req.Address,
		DatabaseName:     dbName,
		AccessKeyHash:    accessKeyHash,
		VerificationCode: verificationCode,
		Status:           domain.ClientStatusPending,
	}

	clientID, err := p.clients.Insert(ctx, client)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateChurch) {
			return nil, &ConflictError{Msg: msgDuplicateChurch}
		}
		return nil, &ProvisioningError{Msg: msgRegisterFailed, Err: err}
	}

	// From here on every step mutates the tenant side. Failures are
	// reported, not compensated: the registry row stays as a tombstone for
	// the operator.
	if err := p.tenants.CreateDatabase(ctx, dbName); err != nil {
		return nil, p.provisionFailed(clientID, dbName, "create database", err)
	}
	if err := p.tenants.CreateSchema(ctx, dbName); err != nil {
		return nil, p.provisionFailed(clientID, dbName, "create schema", err)
	}

	// The member is inserted before the user exists, then back-linked; the
	// two rows both represent the responsible party.
	memberID, err := p.tenants.SeedMember(ctx, dbName, req.ResponsibleName, req.Address)
	if err != nil {
		return nil, p.provisionFailed(clientID, dbName, "seed member", err)
	}
	userID, err := p.tenants.SeedUser(ctx, dbName, req.ResponsibleName, req.Email, accessKeyHash)
	if err != nil {
		return nil, p.provisionFailed(clientID, dbName, "seed user", err)
	}
	if err := p.tenants.LinkMemberToUser(ctx, dbName, memberID, userID); err != nil {
		return nil, p.provisionFailed(clientID, dbName, "link member to user", err)
	}

	p.logger.Info("client provisioned",
		zap.Int64("client_id", clientID),
		zap.String("database", dbName))

	return &ProvisionResult{
		ClientID:     clientID,
		DatabaseName: dbName,
		AccessKey:    accessKey,
		Message:      msgRegisterOK,
	}, nil
}

func (p *Provisioner) provisionFailed(clientID int64, dbName, step string, err error) error {
	p.logger.Error("provisioning failed, partial state left for inspection",
		zap.Int64("client_id", clientID),
		zap.String("database", dbName),
		zap.String("step", step),
		zap.Error(err))
	return &ProvisioningError{Msg: msgRegisterFailed, Err: err}
}
