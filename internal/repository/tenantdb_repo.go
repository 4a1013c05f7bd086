package repository

import (
	"context"
	"errors"
)

// ErrTenantDatabaseMissing：租户数据库或其种子用户不存在
var ErrTenantDatabaseMissing = errors.New("tenant database missing")

// TenantDatabases owns every operation against a client's dedicated
// database. Nothing else in the system creates, mutates or drops tenant
// databases. Database names are always the slug produced by
// domain.DatabaseNameFor, so they are safe to interpolate into DDL once
// backtick-quoted.
//
// None of these operations are transactional across statements: CREATE
// DATABASE and DDL cannot be rolled back in MySQL. A failure partway
// through provisioning leaves whatever completed in place, and the caller
// reports it instead of compensating.
type TenantDatabases interface {
	// CreateDatabase issues CREATE DATABASE IF NOT EXISTS.
	CreateDatabase(ctx context.Context, dbName string) error

	// CreateSchema creates the five fixed tables (usuarios, membros,
	// entrada, saida, contas_a_pagar), each IF NOT EXISTS.
	CreateSchema(ctx context.Context, dbName string) error

	// SeedMember inserts the responsible party as the first membro
	// (status ativo, no usuario_id yet) and returns its id.
	SeedMember(ctx context.Context, dbName, name, address string) (int64, error)

	// SeedUser inserts the first usuario (cargo conselho_fiscal) and
	// returns its id. passwordHash is the already-hashed access key.
	SeedUser(ctx context.Context, dbName, name, email, passwordHash string) (int64, error)

	// LinkMemberToUser back-fills membros.usuario_id after both seed rows
	// exist (the member is inserted first, before the user id is known).
	LinkMemberToUser(ctx context.Context, dbName string, memberID, userID int64) error

	// UpdateAdminUser rewrites the seed user's nome/email/senha. The row is
	// matched by its current email, since no stable key ties the registry
	// row to the tenant-side user.
	UpdateAdminUser(ctx context.Context, dbName, currentEmail, name, newEmail, passwordHash string) error

	// AdminCredential returns the stored credential digest of the tenant's
	// conselho_fiscal user. Returns ErrTenantDatabaseMissing when the
	// database or the seed user cannot be found.
	AdminCredential(ctx context.Context, dbName string) (string, error)

	// Drop issues DROP DATABASE IF EXISTS. Dropping a database that was
	// never created (or is already gone) is not an error.
	Drop(ctx context.Context, dbName string) error
}
