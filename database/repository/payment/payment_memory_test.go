package paymentRepo

import (
	"context"
	"testing"
	"time"

	"staybook/database/repository"
	"staybook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(id, reservationID string, amount int64, createdAt time.Time) *models.Payment {
	return &models.Payment{
		ID:            id,
		ReservationID: reservationID,
		Amount:        amount,
		Currency:      "usd",
		Method:        "card",
		Status:        models.PaymentPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestInsertOnePaymentPerReservation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPaymentRepo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, newPayment("p1", "r1", 50000, now)))
	assert.ErrorIs(t, repo.Insert(ctx, newPayment("p2", "r1", 50000, now)), repository.ErrConflict)
	assert.ErrorIs(t, repo.Insert(ctx, newPayment("p1", "r2", 50000, now)), repository.ErrConflict)

	got, err := repo.GetByReservation(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	_, err = repo.GetByReservation(ctx, "r9")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateStatusCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPaymentRepo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, newPayment("p1", "r1", 50000, now)))

	later := now.Add(time.Hour)
	updated, err := repo.UpdateStatus(ctx, "p1", models.PaymentPending, models.PaymentCompleted, "ch_1", later)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, updated.Status)
	assert.Equal(t, "ch_1", updated.TransactionReference)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = repo.UpdateStatus(ctx, "p1", models.PaymentPending, models.PaymentFailed, "", later)
	assert.ErrorIs(t, err, repository.ErrStaleWrite)

	// An empty reference keeps the previous one.
	updated, err = repo.UpdateStatus(ctx, "p1", models.PaymentCompleted, models.PaymentRefunded, "", later)
	require.NoError(t, err)
	assert.Equal(t, "ch_1", updated.TransactionReference)

	_, err = repo.UpdateStatus(ctx, "nope", models.PaymentPending, models.PaymentCompleted, "", later)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAggregatesAndListing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPaymentRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, newPayment("p2", "r2", 20000, base.Add(2*time.Minute))))
	require.NoError(t, repo.Insert(ctx, newPayment("p1", "r1", 50000, base.Add(time.Minute))))
	require.NoError(t, repo.Insert(ctx, newPayment("p3", "r3", 7000, base.Add(3*time.Minute))))
	_, err := repo.UpdateStatus(ctx, "p1", models.PaymentPending, models.PaymentCompleted, "", base)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "p2", models.PaymentPending, models.PaymentCompleted, "", base)
	require.NoError(t, err)

	total, err := repo.SumCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), total)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.PaymentCompleted])
	assert.Equal(t, int64(1), counts[models.PaymentPending])

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	pending, err := repo.ListByStatus(ctx, models.PaymentPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p3", pending[0].ID)
}

func TestDeleteByReservation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPaymentRepo()
	require.NoError(t, repo.Insert(ctx, newPayment("p1", "r1", 50000, time.Now())))

	deleted, err := repo.DeleteByReservation(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByReservation(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, repo.Insert(ctx, newPayment("p2", "r1", 50000, time.Now())))
}
