package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/database/repository"
	paymentRepo "staybook/database/repository/payment"
	reservationRepo "staybook/database/repository/reservation"
	"staybook/models"
	"staybook/services/lock"
	"staybook/utils"

	"go.uber.org/zap"
)

// PaymentService is the payment ledger. It is independent of the
// reservation lifecycle beyond reading the price at creation.
type PaymentService interface {
	Create(ctx context.Context, reservationID string, amount int64, method string) (*models.Payment, error)
	Process(ctx context.Context, id string) (*models.Payment, error)
	Complete(ctx context.Context, id string) (*models.Payment, error)
	Fail(ctx context.Context, id, reason string) (*models.Payment, error)
	Refund(ctx context.Context, id string) (*models.Payment, error)

	Get(ctx context.Context, id string) (*models.Payment, error)
	GetByReservation(ctx context.Context, reservationID string) (*models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
	ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	TotalCompleted(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[models.PaymentStatus]int64, error)
	Summary(ctx context.Context) (*models.PaymentSummary, error)
}

type DefaultPaymentService struct {
	Repo            paymentRepo.PaymentRepository
	ReservationRepo reservationRepo.ReservationRepository
	Gateway         Gateway
	Locker          lock.Locker
	Currency        string
	Logger          *zap.Logger
	now             func() time.Time
}

type Option func(*DefaultPaymentService)

func WithClock(now func() time.Time) Option {
	return func(s *DefaultPaymentService) { s.now = now }
}

func NewPaymentService(repo paymentRepo.PaymentRepository, reservations reservationRepo.ReservationRepository, gateway Gateway, locker lock.Locker, currency string, logger *zap.Logger, opts ...Option) *DefaultPaymentService {
	if currency == "" {
		currency = "usd"
	}
	s := &DefaultPaymentService{
		Repo:            repo,
		ReservationRepo: reservations,
		Gateway:         gateway,
		Locker:          locker,
		Currency:        currency,
		Logger:          logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DefaultPaymentService) Create(ctx context.Context, reservationID string, amount int64, method string) (*models.Payment, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, utils.InvalidOperation("invalid_method", "payment method is required")
	}

	r, err := s.ReservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFound("reservation %s not found", reservationID)
		}
		return nil, fmt.Errorf("failed to load reservation %s: %w", reservationID, err)
	}
	if amount != r.TotalPrice {
		return nil, utils.InvalidOperation("amount_mismatch", "amount (%d) does not match the reservation total (%d)", amount, r.TotalPrice)
	}

	if _, err := s.Repo.GetByReservation(ctx, reservationID); err == nil {
		return nil, utils.Conflict("duplicate_payment", "a payment already exists for reservation %s", reservationID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}

	p := models.NewPayment(reservationID, amount, s.Currency, method, s.now())
	if err := s.Repo.Insert(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, utils.Conflict("duplicate_payment", "a payment already exists for reservation %s", reservationID).Wrap(err)
		}
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	s.Logger.Info("Payment created",
		zap.String("paymentId", p.ID),
		zap.String("reservationId", reservationID),
		zap.Int64("amount", amount),
		zap.String("method", method))
	return p, nil
}

// move runs a single transition under the payment's lock. settle may call out
// to the gateway and returns the reference to store.
func (s *DefaultPaymentService) move(ctx context.Context, id string, from, to models.PaymentStatus, settle func(p models.Payment) (string, error)) (*models.Payment, error) {
	var out *models.Payment
	err := s.Locker.WithLock(ctx, lock.PaymentKey(id), func(ctx context.Context) error {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != from {
			return utils.InvalidOperation("invalid_transition", "payment %s cannot move from %s to %s", id, current.Status, to)
		}

		reference := ""
		if settle != nil {
			reference, err = settle(*current)
			if err != nil {
				return err
			}
		}

		updated, err := s.Repo.UpdateStatus(ctx, id, from, to, reference, s.now())
		if err != nil {
			if errors.Is(err, repository.ErrStaleWrite) {
				return utils.Conflict("concurrent_update", "payment %s changed concurrently", id).Wrap(err)
			}
			return fmt.Errorf("failed to update payment %s: %w", id, err)
		}
		out = updated
		return nil
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return nil, utils.Conflict("busy", "payment %s is busy, try again", id).Wrap(err)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Payment status changed",
		zap.String("paymentId", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return out, nil
}

// Process charges the payment through the gateway. A declined charge leaves
// the payment FAILED with the decline as its reference and returns the error.
func (s *DefaultPaymentService) Process(ctx context.Context, id string) (*models.Payment, error) {
	var chargeErr error
	p, err := s.move(ctx, id, models.PaymentPending, models.PaymentCompleted, func(p models.Payment) (string, error) {
		ref, err := s.Gateway.Charge(ctx, p)
		if err != nil {
			chargeErr = err
		}
		return ref, err
	})
	if chargeErr == nil {
		return p, err
	}

	s.Logger.Warn("Payment charge failed", zap.String("paymentId", id), zap.Error(chargeErr))
	if _, ferr := s.Fail(ctx, id, chargeErr.Error()); ferr != nil {
		s.Logger.Error("Failed to mark payment as failed", zap.String("paymentId", id), zap.Error(ferr))
	}
	return nil, utils.InvalidOperation("payment_declined", "payment %s was declined: %v", id, chargeErr).Wrap(chargeErr)
}

func (s *DefaultPaymentService) Complete(ctx context.Context, id string) (*models.Payment, error) {
	return s.move(ctx, id, models.PaymentPending, models.PaymentCompleted, nil)
}

func (s *DefaultPaymentService) Fail(ctx context.Context, id, reason string) (*models.Payment, error) {
	return s.move(ctx, id, models.PaymentPending, models.PaymentFailed, func(models.Payment) (string, error) {
		return reason, nil
	})
}

func (s *DefaultPaymentService) Refund(ctx context.Context, id string) (*models.Payment, error) {
	return s.move(ctx, id, models.PaymentCompleted, models.PaymentRefunded, func(p models.Payment) (string, error) {
		refundID, err := s.Gateway.Refund(ctx, p)
		if err != nil {
			return "", fmt.Errorf("refund of payment %s failed: %w", id, err)
		}
		if refundID != "" {
			s.Logger.Info("Refund issued", zap.String("paymentId", id), zap.String("refund", refundID))
		}
		// The charge reference stays on the payment.
		return "", nil
	})
}

func (s *DefaultPaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFound("payment %s not found", id)
		}
		return nil, fmt.Errorf("failed to load payment %s: %w", id, err)
	}
	return p, nil
}

func (s *DefaultPaymentService) GetByReservation(ctx context.Context, reservationID string) (*models.Payment, error) {
	p, err := s.Repo.GetByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFound("no payment found for reservation %s", reservationID)
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}

func (s *DefaultPaymentService) ListAll(ctx context.Context) ([]models.Payment, error) {
	return s.Repo.ListAll(ctx)
}

func (s *DefaultPaymentService) ListByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	if !status.Valid() {
		return nil, utils.InvalidOperation("invalid_status", "unknown payment status %q", status)
	}
	return s.Repo.ListByStatus(ctx, status)
}

func (s *DefaultPaymentService) TotalCompleted(ctx context.Context) (int64, error) {
	return s.Repo.SumCompleted(ctx)
}

func (s *DefaultPaymentService) CountByStatus(ctx context.Context) (map[models.PaymentStatus]int64, error) {
	return s.Repo.CountByStatus(ctx)
}

func (s *DefaultPaymentService) Summary(ctx context.Context) (*models.PaymentSummary, error) {
	total, err := s.TotalCompleted(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &models.PaymentSummary{TotalCompleted: total, CountByStatus: counts}, nil
}
