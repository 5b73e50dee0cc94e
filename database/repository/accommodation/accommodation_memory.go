package accommodationRepo

import (
	"context"
	"fmt"
	"sync"

	"staybook/database/repository"
	"staybook/models"
)

// MemoryAccommodationRepo is an in-process catalog used by tests and local runs.
type MemoryAccommodationRepo struct {
	mu    sync.RWMutex
	items map[string]models.Accommodation
}

func NewMemoryAccommodationRepo(seed ...models.Accommodation) *MemoryAccommodationRepo {
	repo := &MemoryAccommodationRepo{items: make(map[string]models.Accommodation)}
	for _, a := range seed {
		repo.items[a.ID] = a
	}
	return repo
}

func (r *MemoryAccommodationRepo) GetByID(_ context.Context, id string) (*models.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("accommodation %s: %w", id, repository.ErrNotFound)
	}
	return &acc, nil
}

func (r *MemoryAccommodationRepo) Save(_ context.Context, accommodation models.Accommodation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[accommodation.ID] = accommodation
	return nil
}
