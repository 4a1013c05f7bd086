package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"church-registry/internal/credentials"
	"church-registry/internal/domain"
	"church-registry/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

// newProvisionedClient provisions one client and returns the wired services
// plus the provisioning result.
func newProvisionedClient(t *testing.T) (*Lifecycle, *repository.MemoryClientsRepository, *repository.MemoryTenantDatabases, *ProvisionResult) {
	t.Helper()
	clients := repository.NewMemoryClientsRepository()
	tenants := repository.NewMemoryTenantDatabases()
	p := NewProvisioner(clients, tenants, zap.NewNop())

	result, err := p.Provision(context.Background(), validRequest())
	require.NoError(t, err)

	return NewLifecycle(clients, tenants, nil, zap.NewNop()), clients, tenants, result
}

func TestUpdate_EmailOnlyLeavesProfileUntouched(t *testing.T) {
	l, clients, tenants, created := newProvisionedClient(t)
	ctx := context.Background()

	before, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)

	res, err := l.Update(ctx, created.ClientID, UpdateRequest{Email: strptr("new@x.org")})
	require.NoError(t, err)
	assert.Len(t, res.AccessKey, 15)

	after, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)

	// only email and credential changed
	assert.Equal(t, before.ResponsibleName, after.ResponsibleName)
	assert.Equal(t, before.ChurchName, after.ChurchName)
	assert.Equal(t, before.TaxID, after.TaxID)
	assert.Equal(t, before.Address, after.Address)
	assert.Equal(t, before.DatabaseName, after.DatabaseName)
	assert.Equal(t, "new@x.org", after.Email)

	// access key always rotates when the request does not supply one
	assert.NotEqual(t, before.AccessKeyHash, after.AccessKeyHash)
	assert.True(t, credentials.VerifyKey(res.AccessKey, after.AccessKeyHash))

	// tenant-side user was matched by the OLD email and carries the new one
	users := tenants.Users(created.DatabaseName)
	require.Len(t, users, 1)
	assert.Equal(t, "new@x.org", users[0].Email)
	assert.Equal(t, after.AccessKeyHash, users[0].PasswordHash)
}

func TestUpdate_EmptyPartialOnlyRotatesKey(t *testing.T) {
	l, clients, _, created := newProvisionedClient(t)
	ctx := context.Background()

	before, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)

	res, err := l.Update(ctx, created.ClientID, UpdateRequest{})
	require.NoError(t, err)

	after, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)

	assert.Equal(t, before.ResponsibleName, after.ResponsibleName)
	assert.Equal(t, before.ChurchName, after.ChurchName)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.TaxID, after.TaxID)
	assert.Equal(t, before.Address, after.Address)
	assert.NotEqual(t, before.AccessKeyHash, after.AccessKeyHash)
	assert.True(t, credentials.VerifyKey(res.AccessKey, after.AccessKeyHash))
}

func TestUpdate_SuppliedAccessKeyIsHonored(t *testing.T) {
	l, clients, tenants, created := newProvisionedClient(t)
	ctx := context.Background()

	res, err := l.Update(ctx, created.ClientID, UpdateRequest{AccessKey: strptr("minha-chave-fixa")})
	require.NoError(t, err)
	assert.Equal(t, "minha-chave-fixa", res.AccessKey)

	after, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)
	assert.True(t, credentials.VerifyKey("minha-chave-fixa", after.AccessKeyHash))

	users := tenants.Users(created.DatabaseName)
	require.Len(t, users, 1)
	assert.True(t, credentials.VerifyKey("minha-chave-fixa", users[0].PasswordHash))
}

func TestUpdate_UnknownClient(t *testing.T) {
	l, _, _, _ := newProvisionedClient(t)

	_, err := l.Update(context.Background(), 999, UpdateRequest{Email: strptr("x@y.z")})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdate_InconsistentClientWithoutDatabase(t *testing.T) {
	clients := repository.NewMemoryClientsRepository()
	tenants := repository.NewMemoryTenantDatabases()
	l := NewLifecycle(clients, tenants, nil, zap.NewNop())

	id, err := clients.Insert(context.Background(), &domain.Client{
		ResponsibleName: "Jane Doe",
		ChurchName:      "No Database Chapel",
		Email:           "jane@x.org",
		TaxID:           "1",
		Address:         "1 Main St",
	})
	require.NoError(t, err)

	_, err = l.Update(context.Background(), id, UpdateRequest{Email: strptr("x@y.z")})
	var pe *ProvisioningError
	require.ErrorAs(t, err, &pe)
}

func TestSetStatus(t *testing.T) {
	l, clients, _, created := newProvisionedClient(t)
	ctx := context.Background()

	require.NoError(t, l.SetStatus(ctx, created.ClientID, domain.ClientStatusInactive))
	c, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusInactive, c.Status)

	var ve *ValidationError
	require.ErrorAs(t, l.SetStatus(ctx, created.ClientID, "pendente"), &ve)
	require.ErrorAs(t, l.SetStatus(ctx, created.ClientID, "banido"), &ve)

	var nf *NotFoundError
	require.ErrorAs(t, l.SetStatus(ctx, 999, domain.ClientStatusActive), &nf)
}

func TestActivate(t *testing.T) {
	l, clients, _, created := newProvisionedClient(t)
	ctx := context.Background()

	stored, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)

	var ve *ValidationError
	require.ErrorAs(t, l.Activate(ctx, created.ClientID, "WRONGCODE1"), &ve)
	require.ErrorAs(t, l.Activate(ctx, created.ClientID, ""), &ve)

	c, err := clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusPending, c.Status)

	require.NoError(t, l.Activate(ctx, created.ClientID, stored.VerificationCode))
	c, err = clients.GetByID(ctx, created.ClientID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusActive, c.Status)

	var nf *NotFoundError
	require.ErrorAs(t, l.Activate(ctx, 999, "ANYCODE"), &nf)
}

func TestDelete(t *testing.T) {
	l, clients, tenants, created := newProvisionedClient(t)
	ctx := context.Background()

	require.NoError(t, l.Delete(ctx, created.ClientID))
	assert.Equal(t, 0, clients.Count())
	assert.False(t, tenants.Exists(created.DatabaseName))
}

func TestDelete_UnknownClientDropsNothing(t *testing.T) {
	l, clients, tenants, _ := newProvisionedClient(t)

	err := l.Delete(context.Background(), 999)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	assert.Equal(t, 1, clients.Count())
	assert.Equal(t, 1, tenants.Len())
}

func TestList_EnrichmentNullsOnLookupFailure(t *testing.T) {
	clients := repository.NewMemoryClientsRepository()
	tenants := repository.NewMemoryTenantDatabases()
	p := NewProvisioner(clients, tenants, zap.NewNop())
	l := NewLifecycle(clients, tenants, nil, zap.NewNop())
	ctx := context.Background()

	first, err := p.Provision(ctx, validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.ChurchName = "Hope Chapel"
	_, err = p.Provision(ctx, second)
	require.NoError(t, err)

	// break the first tenant's database behind the registry's back
	require.NoError(t, tenants.Drop(ctx, first.DatabaseName))

	items, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.False(t, items[0].LiveAccessKeyHash.Valid)
	assert.False(t, items[0].LiveVerificationCode.Valid)
	assert.True(t, items[1].LiveAccessKeyHash.Valid)
	assert.True(t, items[1].LiveVerificationCode.Valid)
	assert.Len(t, items[1].LiveVerificationCode.String, 10)
}

// mapKV is an in-memory store.KV for cache tests.
type mapKV struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMapKV() *mapKV { return &mapKV{data: map[string]string{}} }

func (m *mapKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func (m *mapKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mapKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// countingTenantDBs counts AdminCredential calls.
type countingTenantDBs struct {
	repository.TenantDatabases
	credentialCalls int
}

func (c *countingTenantDBs) AdminCredential(ctx context.Context, dbName string) (string, error) {
	c.credentialCalls++
	return c.TenantDatabases.AdminCredential(ctx, dbName)
}

func TestList_CredentialCache(t *testing.T) {
	clients := repository.NewMemoryClientsRepository()
	tenants := repository.NewMemoryTenantDatabases()
	counting := &countingTenantDBs{TenantDatabases: tenants}
	kv := newMapKV()
	p := NewProvisioner(clients, tenants, zap.NewNop())
	l := NewLifecycle(clients, counting, kv, zap.NewNop())
	ctx := context.Background()

	created, err := p.Provision(ctx, validRequest())
	require.NoError(t, err)

	_, err = l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.credentialCalls)
	assert.Equal(t, 1, kv.sets)

	// second listing is served from the cache
	_, err = l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.credentialCalls)

	// rotation invalidates the cached digest
	_, err = l.Update(ctx, created.ClientID, UpdateRequest{})
	require.NoError(t, err)
	_, err = l.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.credentialCalls)
}
