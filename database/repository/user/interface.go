package userRepo

import (
	"context"

	"staybook/models"
)

// UserRepository is the identity lookup consumed by the engine.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user models.User) error
}
