package availability

import (
	"context"
	"time"

	"staybook/models"
)

// CalendarService maintains the blocked/open calendar of each accommodation.
// A day is open unless an explicit blocked entry exists for it.
type CalendarService interface {
	IsOpen(ctx context.Context, accommodationID string, date time.Time) (bool, error)
	Block(ctx context.Context, accommodationID string, date time.Time, reason string) (*models.AvailabilityEntry, error)
	Unblock(ctx context.Context, accommodationID string, date time.Time) error

	// Range projections are over the inclusive range [start, end].
	ListOpen(ctx context.Context, accommodationID string, start, end time.Time) ([]time.Time, error)
	ListBlocked(ctx context.Context, accommodationID string, start, end time.Time) ([]time.Time, error)
	CountOpen(ctx context.Context, accommodationID string, start, end time.Time) (int, error)
	CountBlocked(ctx context.Context, accommodationID string, start, end time.Time) (int, error)
	Summary(ctx context.Context, accommodationID string, start, end time.Time) (*models.DateSummary, error)

	ListByAccommodation(ctx context.Context, accommodationID string) ([]models.AvailabilityEntry, error)
	// FirstBlocked returns the first blocked day in [checkIn, checkOut), or nil.
	// It performs no existence check and takes no lock; admission calls it
	// from inside its own critical section.
	FirstBlocked(ctx context.Context, accommodationID string, checkIn, checkOut time.Time) (*time.Time, error)
}
