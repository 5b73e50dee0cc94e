package paymentRepo

import (
	"context"
	"time"

	"staybook/models"
)

// PaymentRepository persists the payment ledger. At most one payment exists
// per reservation; Insert returns repository.ErrConflict otherwise.
type PaymentRepository interface {
	Insert(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByReservation(ctx context.Context, reservationID string) (*models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	// UpdateStatus moves a payment from one status to another only if it is
	// still in from. It returns repository.ErrStaleWrite when it is not.
	UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, reference string, at time.Time) (*models.Payment, error)
	DeleteByReservation(ctx context.Context, reservationID string) (bool, error)
	SumCompleted(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.PaymentStatus]int64, error)
}
