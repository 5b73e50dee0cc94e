package models

// CreateReservationRequest is the body of POST /api/reservations. Dates are YYYY-MM-DD.
type CreateReservationRequest struct {
	AccommodationID string `json:"accommodationId" binding:"required"`
	GuestID         string `json:"guestId" binding:"required"`
	CheckInDate     string `json:"checkInDate" binding:"required"`
	CheckOutDate    string `json:"checkOutDate" binding:"required"`
	NumberOfGuests  int    `json:"numberOfGuests"`
}

type EditReservationRequest struct {
	CheckInDate    string `json:"checkInDate" binding:"required"`
	CheckOutDate   string `json:"checkOutDate" binding:"required"`
	NumberOfGuests int    `json:"numberOfGuests"`
}

type BlockDateRequest struct {
	Reason string `json:"reason"`
}

type CreatePaymentRequest struct {
	ReservationID string `json:"reservationId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Method        string `json:"method" binding:"required"`
}

type FailPaymentRequest struct {
	Reason string `json:"reason"`
}
