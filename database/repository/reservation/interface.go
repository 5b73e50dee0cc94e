package reservationRepo

import (
	"context"
	"time"

	"staybook/models"
)

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	AccommodationID string
	GuestID         string
	Status          models.ReservationStatus
	// CheckOutBy keeps reservations with CheckOutDate <= CheckOutBy.
	CheckOutBy *time.Time
}

// ReservationRepository persists reservations. Implementations enforce the
// no-double-booking rule at write time: Insert and Update return
// repository.ErrConflict when an active reservation would overlap another
// active reservation of the same accommodation.
type ReservationRepository interface {
	Insert(ctx context.Context, reservation *models.Reservation) error
	Update(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// FindOverlapping returns active reservations intersecting [checkIn, checkOut),
	// skipping excludeID.
	FindOverlapping(ctx context.Context, accommodationID string, checkIn, checkOut time.Time, excludeID string) ([]models.Reservation, error)
	List(ctx context.Context, filter Filter) ([]models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

var activeStatuses = []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}
