package accommodationRepo

import (
	"context"

	"staybook/models"
)

// AccommodationRepository is the catalog lookup consumed by admission.
type AccommodationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Accommodation, error)
	Save(ctx context.Context, accommodation models.Accommodation) error
}
