package reservationRepo

import (
	"context"
	"testing"
	"time"

	"staybook/database/repository"
	"staybook/models"
	"staybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stay(id, accommodationID, in, out string, status models.ReservationStatus) *models.Reservation {
	return &models.Reservation{
		ID:              id,
		AccommodationID: accommodationID,
		GuestID:         "guest-1",
		CheckInDate:     utils.MustDate(in),
		CheckOutDate:    utils.MustDate(out),
		NumberOfGuests:  1,
		Status:          status,
	}
}

func TestInsertRejectsOverlapOfActiveStays(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReservationRepo()

	require.NoError(t, repo.Insert(ctx, stay("r1", "acc", "2024-01-10", "2024-01-15", models.ReservationPending)))

	err := repo.Insert(ctx, stay("r2", "acc", "2024-01-14", "2024-01-16", models.ReservationPending))
	assert.ErrorIs(t, err, repository.ErrConflict)

	// Back-to-back and other accommodations never clash.
	require.NoError(t, repo.Insert(ctx, stay("r3", "acc", "2024-01-15", "2024-01-17", models.ReservationConfirmed)))
	require.NoError(t, repo.Insert(ctx, stay("r4", "other", "2024-01-10", "2024-01-15", models.ReservationPending)))

	// Inactive records are stored without an overlap check.
	require.NoError(t, repo.Insert(ctx, stay("r5", "acc", "2024-01-11", "2024-01-12", models.ReservationCancelled)))

	assert.ErrorIs(t, repo.Insert(ctx, stay("r1", "acc", "2024-03-01", "2024-03-02", models.ReservationPending)), repository.ErrConflict)
}

func TestUpdateExcludesItself(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReservationRepo()
	require.NoError(t, repo.Insert(ctx, stay("r1", "acc", "2024-01-10", "2024-01-15", models.ReservationPending)))
	require.NoError(t, repo.Insert(ctx, stay("r2", "acc", "2024-01-20", "2024-01-22", models.ReservationPending)))

	require.NoError(t, repo.Update(ctx, stay("r1", "acc", "2024-01-11", "2024-01-16", models.ReservationConfirmed)))

	err := repo.Update(ctx, stay("r1", "acc", "2024-01-11", "2024-01-21", models.ReservationConfirmed))
	assert.ErrorIs(t, err, repository.ErrConflict)

	// Cancelling frees the range.
	require.NoError(t, repo.Update(ctx, stay("r2", "acc", "2024-01-20", "2024-01-22", models.ReservationCancelled)))
	require.NoError(t, repo.Update(ctx, stay("r1", "acc", "2024-01-11", "2024-01-21", models.ReservationConfirmed)))

	assert.ErrorIs(t, repo.Update(ctx, stay("missing", "acc", "2024-02-01", "2024-02-02", models.ReservationPending)), repository.ErrNotFound)
	assert.Error(t, repo.Update(ctx, stay("r1", "other", "2024-01-11", "2024-01-21", models.ReservationConfirmed)))
}

func TestFindOverlappingAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReservationRepo()
	require.NoError(t, repo.Insert(ctx, stay("b", "acc", "2024-01-20", "2024-01-22", models.ReservationConfirmed)))
	require.NoError(t, repo.Insert(ctx, stay("a", "acc", "2024-01-10", "2024-01-15", models.ReservationPending)))
	require.NoError(t, repo.Insert(ctx, stay("c", "acc", "2024-01-12", "2024-01-13", models.ReservationCompleted)))

	found, err := repo.FindOverlapping(ctx, "acc", utils.MustDate("2024-01-01"), utils.MustDate("2024-02-01"), "")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].ID)
	assert.Equal(t, "b", found[1].ID)

	found, err = repo.FindOverlapping(ctx, "acc", utils.MustDate("2024-01-01"), utils.MustDate("2024-02-01"), "a")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	cutoff := utils.MustDate("2024-01-15")
	list, err := repo.List(ctx, Filter{AccommodationID: "acc", CheckOutBy: &cutoff})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(ctx, Filter{Status: models.ReservationConfirmed})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)

	list, err = repo.List(ctx, Filter{GuestID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReservationRepo()
	require.NoError(t, repo.Insert(ctx, stay("r1", "acc", "2024-01-10", "2024-01-15", models.ReservationPending)))

	require.NoError(t, repo.Delete(ctx, "r1"))
	_, err := repo.GetByID(ctx, "r1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "r1"), repository.ErrNotFound)

	// The range is free again.
	require.NoError(t, repo.Insert(ctx, stay("r2", "acc", "2024-01-10", "2024-01-15", models.ReservationPending)))
}

func TestGetByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReservationRepo()
	require.NoError(t, repo.Insert(ctx, stay("r1", "acc", "2024-01-10", "2024-01-15", models.ReservationPending)))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	got.CheckOutDate = got.CheckOutDate.Add(48 * time.Hour)

	again, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, utils.MustDate("2024-01-15"), again.CheckOutDate)
}
