package userRepo

import (
	"context"
	"fmt"
	"sync"

	"staybook/database/repository"
	"staybook/models"
)

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepo(seed ...models.User) *MemoryUserRepo {
	repo := &MemoryUserRepo{users: make(map[string]models.User)}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return &u, nil
}

func (r *MemoryUserRepo) Save(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}
