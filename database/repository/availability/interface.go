package availabilityRepo

import (
	"context"
	"time"

	"staybook/models"
)

// CalendarRepository stores the sparse per-day exceptions of each accommodation.
// Dates are expected normalised to UTC midnight.
type CalendarRepository interface {
	Get(ctx context.Context, accommodationID string, date time.Time) (*models.AvailabilityEntry, error)
	// Upsert writes the entry, keeping CreatedAt of an existing one.
	Upsert(ctx context.Context, entry models.AvailabilityEntry) error
	// Delete reports whether an entry was removed.
	Delete(ctx context.Context, accommodationID string, date time.Time) (bool, error)
	// ListRange returns entries with from <= date < to, ordered by date.
	ListRange(ctx context.Context, accommodationID string, from, to time.Time) ([]models.AvailabilityEntry, error)
	ListByAccommodation(ctx context.Context, accommodationID string) ([]models.AvailabilityEntry, error)
}
