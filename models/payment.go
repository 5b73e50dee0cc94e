package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment settles one reservation.
type Payment struct {
	ID                   string        `bson:"id" json:"id"`
	ReservationID        string        `bson:"reservation_id" json:"reservationId"`
	Amount               int64         `bson:"amount" json:"amount"` // minor units
	Currency             string        `bson:"currency" json:"currency"`
	Method               string        `bson:"method" json:"method"`
	Status               PaymentStatus `bson:"status" json:"status"`
	TransactionReference string        `bson:"transaction_reference,omitempty" json:"transactionReference,omitempty"`
	CreatedAt            time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `bson:"updated_at" json:"updatedAt"`
}

// NewPayment builds a PENDING payment stamped with now.
func NewPayment(reservationID string, amount int64, currency, method string, now time.Time) *Payment {
	return &Payment{
		ID:            uuid.New().String(),
		ReservationID: reservationID,
		Amount:        amount,
		Currency:      currency,
		Method:        method,
		Status:        PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// PaymentSummary aggregates the ledger for reporting.
type PaymentSummary struct {
	TotalCompleted int64                   `json:"totalCompleted"`
	CountByStatus  map[PaymentStatus]int64 `json:"countByStatus"`
}
