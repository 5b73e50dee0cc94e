package availability

import (
	"context"
	"testing"
	"time"

	accommodationRepo "staybook/database/repository/accommodation"
	availabilityRepo "staybook/database/repository/availability"
	"staybook/models"
	"staybook/services/lock"
	"staybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCalendar(t *testing.T) (*DefaultCalendarService, *availabilityRepo.MemoryCalendarRepo) {
	t.Helper()
	accRepo := accommodationRepo.NewMemoryAccommodationRepo(models.Accommodation{
		ID: "acc-1", HostID: "host-1", NightlyRate: 10000, MaxCapacity: 4, Status: models.AccommodationActive,
	})
	repo := availabilityRepo.NewMemoryCalendarRepo()
	today := utils.MustDate("2024-01-01")
	svc := NewCalendarService(repo, accRepo, lock.NewMemoryLocker(time.Second), zap.NewNop(),
		WithClock(func() time.Time { return today }))
	return svc, repo
}

func TestBlockIsIdempotent(t *testing.T) {
	svc, repo := newTestCalendar(t)
	ctx := context.Background()
	day := utils.MustDate("2024-01-12")

	_, err := svc.Block(ctx, "acc-1", day, "maintenance")
	require.NoError(t, err)
	entry, err := svc.Block(ctx, "acc-1", day, "owner stay")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, "owner stay", entry.Reason)
	assert.False(t, entry.Available)

	open, err := svc.IsOpen(ctx, "acc-1", day)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestUnblockOpenDateIsNoop(t *testing.T) {
	svc, repo := newTestCalendar(t)
	ctx := context.Background()

	require.NoError(t, svc.Unblock(ctx, "acc-1", utils.MustDate("2024-01-12")))
	assert.Equal(t, 0, repo.Len())

	_, err := svc.Block(ctx, "acc-1", utils.MustDate("2024-01-12"), "")
	require.NoError(t, err)
	require.NoError(t, svc.Unblock(ctx, "acc-1", utils.MustDate("2024-01-12")))
	assert.Equal(t, 0, repo.Len())

	open, err := svc.IsOpen(ctx, "acc-1", utils.MustDate("2024-01-12"))
	require.NoError(t, err)
	assert.True(t, open)
}

func TestBlockRejectsPastDateAndUnknownAccommodation(t *testing.T) {
	svc, _ := newTestCalendar(t)
	ctx := context.Background()

	_, err := svc.Block(ctx, "acc-1", utils.MustDate("2023-12-31"), "")
	assert.True(t, utils.IsInvalidOperation(err))
	assert.Equal(t, "past_date", utils.ErrorCode(err))

	_, err = svc.Block(ctx, "missing", utils.MustDate("2024-01-12"), "")
	assert.True(t, utils.IsNotFound(err))

	// Today itself may be blocked.
	_, err = svc.Block(ctx, "acc-1", utils.MustDate("2024-01-01"), "")
	assert.NoError(t, err)
}

func TestRangeProjections(t *testing.T) {
	svc, _ := newTestCalendar(t)
	ctx := context.Background()
	for _, d := range []string{"2024-01-11", "2024-01-13", "2024-01-20"} {
		_, err := svc.Block(ctx, "acc-1", utils.MustDate(d), "")
		require.NoError(t, err)
	}
	start, end := utils.MustDate("2024-01-10"), utils.MustDate("2024-01-14")

	blocked, err := svc.ListBlocked(ctx, "acc-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{utils.MustDate("2024-01-11"), utils.MustDate("2024-01-13")}, blocked)

	open, err := svc.ListOpen(ctx, "acc-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{utils.MustDate("2024-01-10"), utils.MustDate("2024-01-12"), utils.MustDate("2024-01-14")}, open)

	nOpen, err := svc.CountOpen(ctx, "acc-1", start, end)
	require.NoError(t, err)
	nBlocked, err := svc.CountBlocked(ctx, "acc-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, 3, nOpen)
	assert.Equal(t, 2, nBlocked)

	summary, err := svc.Summary(ctx, "acc-1", start, start)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CountOpen)
	assert.Zero(t, summary.CountBlocked)
}

func TestRangeProjectionRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestCalendar(t)
	_, err := svc.ListOpen(context.Background(), "acc-1", utils.MustDate("2024-01-15"), utils.MustDate("2024-01-10"))
	assert.True(t, utils.IsInvalidOperation(err))
	assert.Equal(t, "invalid_range", utils.ErrorCode(err))
}

func TestRangeProjectionRejectsOversizedRange(t *testing.T) {
	svc, _ := newTestCalendar(t)
	ctx := context.Background()

	_, err := svc.Summary(ctx, "acc-1", utils.MustDate("0001-01-01"), utils.MustDate("9999-12-31"))
	assert.True(t, utils.IsInvalidOperation(err))
	assert.Equal(t, "range_too_large", utils.ErrorCode(err))

	_, err = svc.CountOpen(ctx, "acc-1", utils.MustDate("2024-01-01"), utils.MustDate("2025-01-01"))
	assert.Equal(t, "range_too_large", utils.ErrorCode(err))

	// 366 days, the leap year 2024 in full.
	n, err := svc.CountOpen(ctx, "acc-1", utils.MustDate("2024-01-01"), utils.MustDate("2024-12-31"))
	require.NoError(t, err)
	assert.Equal(t, MaxProjectionDays, n)
}

func TestFirstBlockedIsHalfOpen(t *testing.T) {
	svc, _ := newTestCalendar(t)
	ctx := context.Background()
	_, err := svc.Block(ctx, "acc-1", utils.MustDate("2024-01-15"), "")
	require.NoError(t, err)

	day, err := svc.FirstBlocked(ctx, "acc-1", utils.MustDate("2024-01-10"), utils.MustDate("2024-01-15"))
	require.NoError(t, err)
	assert.Nil(t, day)

	day, err = svc.FirstBlocked(ctx, "acc-1", utils.MustDate("2024-01-14"), utils.MustDate("2024-01-17"))
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, utils.MustDate("2024-01-15"), *day)

	entries, err := svc.ListByAccommodation(ctx, "acc-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
