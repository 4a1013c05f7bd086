package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"church-registry/internal/domain"
)

// memTenantDB holds one fake tenant database.
type memTenantDB struct {
	schemaReady bool
	nextID      int64
	users       []domain.TenantUser
	members     []domain.TenantMember
}

// MemoryTenantDatabases is the in-memory TenantDatabases used by unit tests
// and by the DB-disabled dev mode. It mimics the idempotence of the real
// DDL: creating an existing database or schema is a no-op, dropping a
// missing one succeeds.
type MemoryTenantDatabases struct {
	mu  sync.RWMutex
	dbs map[string]*memTenantDB
}

func NewMemoryTenantDatabases() *MemoryTenantDatabases {
	return &MemoryTenantDatabases{dbs: map[string]*memTenantDB{}}
}

var _ TenantDatabases = (*MemoryTenantDatabases)(nil)

func (r *MemoryTenantDatabases) CreateDatabase(_ context.Context, dbName string) error {
	if dbName == "" {
		return fmt.Errorf("database name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dbs[dbName]; !ok {
		r.dbs[dbName] = &memTenantDB{nextID: 1}
	}
	return nil
}

func (r *MemoryTenantDatabases) CreateSchema(_ context.Context, dbName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.dbs[dbName]
	if !ok {
		return fmt.Errorf("failed to create tenant schema for %s: %w", dbName, ErrTenantDatabaseMissing)
	}
	db.schemaReady = true
	return nil
}

func (r *MemoryTenantDatabases) SeedMember(_ context.Context, dbName, name, address string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.dbs[dbName]
	if !ok || !db.schemaReady {
		return 0, fmt.Errorf("failed to seed member in %s: %w", dbName, ErrTenantDatabaseMissing)
	}
	m := domain.TenantMember{
		ID:      db.nextID,
		Name:    name,
		Address: sql.NullString{String: address, Valid: true},
		Status:  domain.MemberStatusActive,
	}
	db.nextID++
	db.members = append(db.members, m)
	return m.ID, nil
}

func (r *MemoryTenantDatabases) SeedUser(_ context.Context, dbName, name, email, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.dbs[dbName]
	if !ok || !db.schemaReady {
		return 0, fmt.Errorf("failed to seed user in %s: %w", dbName, ErrTenantDatabaseMissing)
	}
	u := domain.TenantUser{
		ID:           db.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleFiscalCouncil,
	}
	db.nextID++
	db.users = append(db.users, u)
	return u.ID, nil
}

func (r *MemoryTenantDatabases) LinkMemberToUser(_ context.Context, dbName string, memberID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.dbs[dbName]
	if !ok {
		return fmt.Errorf("failed to link member in %s: %w", dbName, ErrTenantDatabaseMissing)
	}
	for i := range db.members {
		if db.members[i].ID == memberID {
			db.members[i].UserID = sql.NullInt64{Int64: userID, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("member %d not found in %s", memberID, dbName)
}

func (r *MemoryTenantDatabases) UpdateAdminUser(_ context.Context, dbName, currentEmail, name, newEmail, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	db, ok := r.dbs[dbName]
	if !ok {
		return fmt.Errorf("failed to update admin user in %s: %w", dbName, ErrTenantDatabaseMissing)
	}
	for i := range db.users {
		if db.users[i].Email == currentEmail && db.users[i].Role == domain.RoleFiscalCouncil {
			db.users[i].Name = name
			db.users[i].Email = newEmail
			db.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	// Matching by email is best-effort; like the SQL UPDATE, no match is
	// not an error.
	return nil
}

func (r *MemoryTenantDatabases) AdminCredential(_ context.Context, dbName string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.dbs[dbName]
	if !ok {
		return "", ErrTenantDatabaseMissing
	}
	for _, u := range db.users {
		if u.Role == domain.RoleFiscalCouncil {
			return u.PasswordHash, nil
		}
	}
	return "", ErrTenantDatabaseMissing
}

func (r *MemoryTenantDatabases) Drop(_ context.Context, dbName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.dbs, dbName)
	return nil
}

// ---- test inspection helpers ----

// Exists reports whether the named fake database exists.
func (r *MemoryTenantDatabases) Exists(dbName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dbs[dbName]
	return ok
}

// Len returns how many fake databases exist.
func (r *MemoryTenantDatabases) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dbs)
}

// Users returns a copy of the usuarios rows of one fake database.
func (r *MemoryTenantDatabases) Users(dbName string) []domain.TenantUser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.dbs[dbName]
	if !ok {
		return nil
	}
	out := make([]domain.TenantUser, len(db.users))
	copy(out, db.users)
	return out
}

// Members returns a copy of the membros rows of one fake database.
func (r *MemoryTenantDatabases) Members(dbName string) []domain.TenantMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	db, ok := r.dbs[dbName]
	if !ok {
		return nil
	}
	out := make([]domain.TenantMember, len(db.members))
	copy(out, db.members)
	return out
}
