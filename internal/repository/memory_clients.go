package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"church-registry/internal/domain"
)

// MemoryClientsRepository supports the admin API when MySQL is disabled and
// backs the service-level unit tests.
type MemoryClientsRepository struct {
	mu      sync.RWMutex
	nextID  int64
	clients map[int64]domain.Client
}

func NewMemoryClientsRepository() *MemoryClientsRepository {
	return &MemoryClientsRepository{
		nextID:  1,
		clients: map[int64]domain.Client{},
	}
}

var _ ClientsRepository = (*MemoryClientsRepository)(nil)

func (r *MemoryClientsRepository) EnsureSchema(context.Context) error { return nil }

func (r *MemoryClientsRepository) Insert(_ context.Context, client *domain.Client) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		if c.ChurchName == client.ChurchName {
			return 0, ErrDuplicateChurch
		}
	}

	stored := *client
	stored.ID = r.nextID
	if stored.Status == "" {
		stored.Status = domain.ClientStatusPending
	}
	stored.CreatedAt = time.Now()
	r.clients[stored.ID] = stored
	r.nextID++
	return stored.ID, nil
}

func (r *MemoryClientsRepository) GetByID(_ context.Context, id int64) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	out := c
	return &out, nil
}

func (r *MemoryClientsRepository) FindByChurchName(_ context.Context, churchName string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.clients {
		if c.ChurchName == churchName {
			out := c
			return &out, nil
		}
	}
	return nil, ErrClientNotFound
}

func (r *MemoryClientsRepository) Update(_ context.Context, id int64, upd ClientUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return ErrClientNotFound
	}

	if upd.ChurchName != nil && *upd.ChurchName != c.ChurchName {
		for _, other := range r.clients {
			if other.ID != id && other.ChurchName == *upd.ChurchName {
				return ErrDuplicateChurch
			}
		}
		c.ChurchName = *upd.ChurchName
	}
	if upd.ResponsibleName != nil {
		c.ResponsibleName = *upd.ResponsibleName
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	if upd.TaxID != nil {
		c.TaxID = *upd.TaxID
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.AccessKeyHash != nil {
		c.AccessKeyHash = *upd.AccessKeyHash
	}
	if upd.VerificationCode != nil {
		c.VerificationCode = *upd.VerificationCode
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}

	r.clients[id] = c
	return nil
}

func (r *MemoryClientsRepository) SetStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return ErrClientNotFound
	}
	c.Status = status
	r.clients[id] = c
	return nil
}

func (r *MemoryClientsRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *MemoryClientsRepository) ListAll(context.Context) ([]*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out := c
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// Count is a test convenience.
func (r *MemoryClientsRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
