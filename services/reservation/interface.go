package reservation

import (
	"context"
	"time"

	"staybook/models"
)

// AdmissionRequest is a candidate stay checked against the rules of admission.
type AdmissionRequest struct {
	AccommodationID string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	// ExcludeID skips one reservation in the overlap check (used by Edit).
	ExcludeID string
}

type CreateInput struct {
	AccommodationID string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
}

type EditInput struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// ReservationService admits stays and drives the reservation lifecycle.
type ReservationService interface {
	// CheckAdmission returns nil when the stay may be booked, or an
	// InvalidOperation error whose code names the first failed rule.
	CheckAdmission(ctx context.Context, req AdmissionRequest) error
	Create(ctx context.Context, in CreateInput) (*models.Reservation, error)
	Edit(ctx context.Context, id string, in EditInput) (*models.Reservation, error)
	Confirm(ctx context.Context, id string) (*models.Reservation, error)
	Cancel(ctx context.Context, id string) (*models.Reservation, error)
	// CompleteElapsed moves CONFIRMED stays whose checkout is today or earlier
	// to COMPLETED and returns how many were moved.
	CompleteElapsed(ctx context.Context) (int, error)

	Get(ctx context.Context, id string) (*models.Reservation, error)
	ListAll(ctx context.Context) ([]models.Reservation, error)
	ListByAccommodation(ctx context.Context, accommodationID string) ([]models.Reservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]models.Reservation, error)
	ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error)
	Delete(ctx context.Context, id string) error
	IsAvailable(ctx context.Context, accommodationID string, checkIn, checkOut time.Time) (bool, error)
}
