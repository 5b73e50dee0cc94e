package paymentRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"staybook/database/repository"
	"staybook/models"
)

type MemoryPaymentRepo struct {
	mu            sync.RWMutex
	byID          map[string]models.Payment
	byReservation map[string]string
}

func NewMemoryPaymentRepo() *MemoryPaymentRepo {
	return &MemoryPaymentRepo{
		byID:          make(map[string]models.Payment),
		byReservation: make(map[string]string),
	}
}

func (r *MemoryPaymentRepo) Insert(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byReservation[payment.ReservationID]; exists {
		return fmt.Errorf("payment for reservation %s: %w", payment.ReservationID, repository.ErrConflict)
	}
	if _, exists := r.byID[payment.ID]; exists {
		return fmt.Errorf("payment %s: %w", payment.ID, repository.ErrConflict)
	}
	r.byID[payment.ID] = *payment
	r.byReservation[payment.ReservationID] = payment.ID
	return nil
}

func (r *MemoryPaymentRepo) GetByID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, repository.ErrNotFound)
	}
	return &payment, nil
}

func (r *MemoryPaymentRepo) GetByReservation(_ context.Context, reservationID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReservation[reservationID]
	if !ok {
		return nil, fmt.Errorf("payment for reservation %s: %w", reservationID, repository.ErrNotFound)
	}
	payment := r.byID[id]
	return &payment, nil
}

func (r *MemoryPaymentRepo) ListAll(_ context.Context) ([]models.Payment, error) {
	return r.list(func(models.Payment) bool { return true }), nil
}

func (r *MemoryPaymentRepo) ListByStatus(_ context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return r.list(func(p models.Payment) bool { return p.Status == status }), nil
}

func (r *MemoryPaymentRepo) list(keep func(models.Payment) bool) []models.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Payment{}
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryPaymentRepo) UpdateStatus(_ context.Context, id string, from, to models.PaymentStatus, reference string, at time.Time) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, repository.ErrNotFound)
	}
	if payment.Status != from {
		return nil, fmt.Errorf("payment %s is no longer %s: %w", id, from, repository.ErrStaleWrite)
	}
	payment.Status = to
	payment.UpdatedAt = at
	if reference != "" {
		payment.TransactionReference = reference
	}
	r.byID[id] = payment
	return &payment, nil
}

func (r *MemoryPaymentRepo) DeleteByReservation(_ context.Context, reservationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byReservation[reservationID]
	if !ok {
		return false, nil
	}
	delete(r.byReservation, reservationID)
	delete(r.byID, id)
	return true, nil
}

func (r *MemoryPaymentRepo) SumCompleted(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, p := range r.byID {
		if p.Status == models.PaymentCompleted {
			total += p.Amount
		}
	}
	return total, nil
}

func (r *MemoryPaymentRepo) CountByStatus(_ context.Context) (map[models.PaymentStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.PaymentStatus]int64)
	for _, p := range r.byID {
		counts[p.Status]++
	}
	return counts, nil
}
