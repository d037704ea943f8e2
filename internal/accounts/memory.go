package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo keeps accounts in a map. Used by tests and the demo seed.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Account
}

func NewMemoryRepo(seed ...Account) *MemoryRepo {
	r := &MemoryRepo{data: make(map[string]Account)}
	for _, a := range seed {
		_, _ = r.Upsert(context.Background(), a)
	}
	return r
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, a Account) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Second)
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if prev, ok := r.data[a.ID]; ok {
		a.CreatedAt = prev.CreatedAt
	} else {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.data[a.ID] = a
	return a, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, 0, len(r.data))
	for _, a := range r.data {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
