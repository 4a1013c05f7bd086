package service

import (
	"context"
	"errors"
	"testing"

	"church-registry/internal/credentials"
	"church-registry/internal/domain"
	"church-registry/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validRequest() RegisterRequest {
	return RegisterRequest{
		ResponsibleName: "Jane Doe",
		ChurchName:      "Grace Chapel",
		Email:           "jane@x.org",
		TaxID:           "11.111/1",
		Address:         "1 Main St",
	}
}

func newTestProvisioner() (*Provisioner, *repository.MemoryClientsRepository, *repository.MemoryTenantDatabases) {
	clients := repository.NewMemoryClientsRepository()
	tenants := repository.NewMemoryTenantDatabases()
	return NewProvisioner(clients, tenants, zap.NewNop()), clients, tenants
}

func TestProvision_HappyPath(t *testing.T) {
	p, clients, tenants := newTestProvisioner()
	ctx := context.Background()

	result, err := p.Provision(ctx, validRequest())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, result.AccessKey, 15)
	assert.Equal(t, "grace_chapel", result.DatabaseName)
	assert.NotEmpty(t, result.Message)

	// exactly one registry row, pending, with the derived database name
	require.Equal(t, 1, clients.Count())
	client, err := clients.GetByID(ctx, result.ClientID)
	require.NoError(t, err)
	assert.Equal(t, "grace_chapel", client.DatabaseName)
	assert.Equal(t, domain.ClientStatusPending, client.Status)
	assert.Len(t, client.VerificationCode, 10)

	// the stored digest matches the returned plaintext and is not the
	// plaintext itself
	assert.NotEqual(t, result.AccessKey, client.AccessKeyHash)
	assert.True(t, credentials.VerifyKey(result.AccessKey, client.AccessKeyHash))

	// the tenant database holds one fiscal-council user and one member
	// linked to it
	users := tenants.Users("grace_chapel")
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleFiscalCouncil, users[0].Role)
	assert.Equal(t, "jane@x.org", users[0].Email)
	assert.Equal(t, client.AccessKeyHash, users[0].PasswordHash)

	members := tenants.Members("grace_chapel")
	require.Len(t, members, 1)
	assert.Equal(t, "Jane Doe", members[0].Name)
	require.True(t, members[0].UserID.Valid)
	assert.Equal(t, users[0].ID, members[0].UserID.Int64)
}

func TestProvision_Validation(t *testing.T) {
	p, clients, tenants := newTestProvisioner()

	mutations := []func(*RegisterRequest){
		func(r *RegisterRequest) { r.ResponsibleName = "" },
		func(r *RegisterRequest) { r.ChurchName = "" },
		func(r *RegisterRequest) { r.Email = "" },
		func(r *RegisterRequest) { r.TaxID = "" },
		func(r *RegisterRequest) { r.Address = "" },
	}
	for _, mutate := range mutations {
		req := validRequest()
		mutate(&req)

		_, err := p.Provision(context.Background(), req)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	}

	// validation aborts before any mutation
	assert.Equal(t, 0, clients.Count())
	assert.Equal(t, 0, tenants.Len())
}

func TestProvision_DuplicateChurch(t *testing.T) {
	p, clients, tenants := newTestProvisioner()
	ctx := context.Background()

	_, err := p.Provision(ctx, validRequest())
	require.NoError(t, err)

	_, err = p.Provision(ctx, validRequest())
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	// no second registry row, no second database
	assert.Equal(t, 1, clients.Count())
	assert.Equal(t, 1, tenants.Len())
}

// failingTenantDBs wraps the memory implementation and fails one step.
type failingTenantDBs struct {
	repository.TenantDatabases
	failSeedUser bool
}

var errBoom = errors.New("boom")

func (f *failingTenantDBs) SeedUser(ctx context.Context, dbName, name, email, passwordHash string) (int64, error) {
	if f.failSeedUser {
		return 0, errBoom
	}
	return f.TenantDatabases.SeedUser(ctx, dbName, name, email, passwordHash)
}

func TestProvision_PartialFailureLeavesStateForInspection(t *testing.T) {
	clients := repository.NewMemoryClientsRepository()
	tenants := repository.NewMemoryTenantDatabases()
	p := NewProvisioner(clients, &failingTenantDBs{TenantDatabases: tenants, failSeedUser: true}, zap.NewNop())

	_, err := p.Provision(context.Background(), validRequest())
	var pe *ProvisioningError
	require.ErrorAs(t, err, &pe)
	require.ErrorIs(t, err, errBoom)

	// effects up to the failing step persist: the registry row and the
	// half-built tenant database stay behind, not rolled back
	assert.Equal(t, 1, clients.Count())
	assert.True(t, tenants.Exists("grace_chapel"))
	assert.Len(t, tenants.Members("grace_chapel"), 1)
	assert.Empty(t, tenants.Users("grace_chapel"))
}

func TestProvision_IndependentKeys(t *testing.T) {
	p, clients, _ := newTestProvisioner()
	ctx := context.Background()

	first, err := p.Provision(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.ChurchName = "Hope Chapel"
	result, err := p.Provision(ctx, second)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessKey, result.AccessKey)

	a, err := clients.GetByID(ctx, first.ClientID)
	require.NoError(t, err)
	b, err := clients.GetByID(ctx, result.ClientID)
	require.NoError(t, err)
	assert.NotEqual(t, a.VerificationCode, b.VerificationCode)
}
