package models

import "time"

type ReservationEventType string

const (
	EventReservationCreated   ReservationEventType = "reservation.created"
	EventReservationEdited    ReservationEventType = "reservation.edited"
	EventReservationConfirmed ReservationEventType = "reservation.confirmed"
	EventReservationCancelled ReservationEventType = "reservation.cancelled"
	EventReservationCompleted ReservationEventType = "reservation.completed"
	EventReservationDeleted   ReservationEventType = "reservation.deleted"
)

// ReservationEvent is published after a lifecycle change commits.
type ReservationEvent struct {
	Type            ReservationEventType `json:"type"`
	ReservationID   string               `json:"reservationId"`
	AccommodationID string               `json:"accommodationId"`
	GuestID         string               `json:"guestId"`
	Status          ReservationStatus    `json:"status"`
	CheckInDate     string               `json:"checkInDate"`
	CheckOutDate    string               `json:"checkOutDate"`
	TotalPrice      int64                `json:"totalPrice"`
	OccurredAt      time.Time            `json:"occurredAt"`
}

// NewReservationEvent snapshots r for publishing.
func NewReservationEvent(eventType ReservationEventType, r Reservation, now time.Time) ReservationEvent {
	return ReservationEvent{
		Type:            eventType,
		ReservationID:   r.ID,
		AccommodationID: r.AccommodationID,
		GuestID:         r.GuestID,
		Status:          r.Status,
		CheckInDate:     r.CheckInDate.UTC().Format("2006-01-02"),
		CheckOutDate:    r.CheckOutDate.UTC().Format("2006-01-02"),
		TotalPrice:      r.TotalPrice,
		OccurredAt:      now,
	}
}
