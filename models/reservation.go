package models

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// Holds reports whether the status occupies the accommodation's dates.
func (s ReservationStatus) Holds() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// Terminal reports whether no further mutation is allowed.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// Reservation is a guest's stay over [CheckInDate, CheckOutDate).
type Reservation struct {
	ID              string            `bson:"id" json:"id"`
	AccommodationID string            `bson:"accommodation_id" json:"accommodationId"`
	GuestID         string            `bson:"guest_id" json:"guestId"`
	CheckInDate     time.Time         `bson:"check_in_date" json:"checkInDate"`
	CheckOutDate    time.Time         `bson:"check_out_date" json:"checkOutDate"`
	NumberOfGuests  int               `bson:"number_of_guests" json:"numberOfGuests"`
	TotalPrice      int64             `bson:"total_price" json:"totalPrice"` // minor units
	Status          ReservationStatus `bson:"status" json:"status"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
	CancelledAt     *time.Time        `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
}

// NewReservation builds a PENDING reservation stamped with now.
func NewReservation(accommodationID, guestID string, checkIn, checkOut time.Time, guests int, totalPrice int64, now time.Time) *Reservation {
	return &Reservation{
		ID:              uuid.New().String(),
		AccommodationID: accommodationID,
		GuestID:         guestID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumberOfGuests:  guests,
		TotalPrice:      totalPrice,
		Status:          ReservationPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Overlaps applies the half-open rule: [a, b) and [c, d) intersect iff a < d && b > c.
func (r Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckInDate.Before(checkOut) && r.CheckOutDate.After(checkIn)
}
