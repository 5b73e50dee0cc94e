package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database/repository"
	accommodationRepo "staybook/database/repository/accommodation"
	availabilityRepo "staybook/database/repository/availability"
	"staybook/models"
	"staybook/services/lock"
	"staybook/utils"

	"go.uber.org/zap"
)

// MaxProjectionDays bounds the inclusive range a projection may cover.
const MaxProjectionDays = 366

type DefaultCalendarService struct {
	Repo              availabilityRepo.CalendarRepository
	AccommodationRepo accommodationRepo.AccommodationRepository
	Locker            lock.Locker
	Logger            *zap.Logger
	now               func() time.Time
}

type Option func(*DefaultCalendarService)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *DefaultCalendarService) { s.now = now }
}

func NewCalendarService(repo availabilityRepo.CalendarRepository, accRepo accommodationRepo.AccommodationRepository, locker lock.Locker, logger *zap.Logger, opts ...Option) *DefaultCalendarService {
	s := &DefaultCalendarService{
		Repo:              repo,
		AccommodationRepo: accRepo,
		Locker:            locker,
		Logger:            logger,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DefaultCalendarService) today() time.Time {
	return utils.NormalizeDate(s.now())
}

func (s *DefaultCalendarService) requireAccommodation(ctx context.Context, accommodationID string) error {
	if _, err := s.AccommodationRepo.GetByID(ctx, accommodationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFound("accommodation %s not found", accommodationID)
		}
		return fmt.Errorf("failed to load accommodation %s: %w", accommodationID, err)
	}
	return nil
}

func (s *DefaultCalendarService) IsOpen(ctx context.Context, accommodationID string, date time.Time) (bool, error) {
	if err := s.requireAccommodation(ctx, accommodationID); err != nil {
		return false, err
	}
	entry, err := s.Repo.Get(ctx, accommodationID, utils.NormalizeDate(date))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read calendar: %w", err)
	}
	return entry.Available, nil
}

func (s *DefaultCalendarService) Block(ctx context.Context, accommodationID string, date time.Time, reason string) (*models.AvailabilityEntry, error) {
	date = utils.NormalizeDate(date)
	if err := s.requireAccommodation(ctx, accommodationID); err != nil {
		return nil, err
	}
	if date.Before(s.today()) {
		return nil, utils.InvalidOperation("past_date", "cannot block %s: date is in the past", utils.FormatDate(date))
	}

	entry := models.NewBlockedEntry(accommodationID, date, reason, s.now())
	err := s.Locker.WithLock(ctx, lock.AccommodationKey(accommodationID), func(ctx context.Context) error {
		return s.Repo.Upsert(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return nil, utils.Conflict("busy", "accommodation %s is busy, try again", accommodationID).Wrap(err)
		}
		return nil, fmt.Errorf("failed to block %s: %w", utils.FormatDate(date), err)
	}

	s.Logger.Info("Date blocked",
		zap.String("accommodationId", accommodationID),
		zap.String("date", utils.FormatDate(date)),
		zap.String("reason", reason))

	stored, err := s.Repo.Get(ctx, accommodationID, date)
	if err != nil {
		return &entry, nil
	}
	return stored, nil
}

// Unblock removes the entry for date. Unblocking an open day is a no-op.
func (s *DefaultCalendarService) Unblock(ctx context.Context, accommodationID string, date time.Time) error {
	date = utils.NormalizeDate(date)
	if err := s.requireAccommodation(ctx, accommodationID); err != nil {
		return err
	}

	var removed bool
	err := s.Locker.WithLock(ctx, lock.AccommodationKey(accommodationID), func(ctx context.Context) error {
		var err error
		removed, err = s.Repo.Delete(ctx, accommodationID, date)
		return err
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return utils.Conflict("busy", "accommodation %s is busy, try again", accommodationID).Wrap(err)
		}
		return fmt.Errorf("failed to unblock %s: %w", utils.FormatDate(date), err)
	}
	if removed {
		s.Logger.Info("Date unblocked",
			zap.String("accommodationId", accommodationID),
			zap.String("date", utils.FormatDate(date)))
	}
	return nil
}

// project splits [start, end] into open and blocked days.
func (s *DefaultCalendarService) project(ctx context.Context, accommodationID string, start, end time.Time) (open, blocked []time.Time, err error) {
	start, end = utils.NormalizeDate(start), utils.NormalizeDate(end)
	if start.After(end) {
		return nil, nil, utils.InvalidOperation("invalid_range", "start %s is after end %s", utils.FormatDate(start), utils.FormatDate(end))
	}
	if utils.DaysBetween(start, end) >= MaxProjectionDays {
		return nil, nil, utils.InvalidOperation("range_too_large", "range %s to %s exceeds %d days",
			utils.FormatDate(start), utils.FormatDate(end), MaxProjectionDays)
	}
	if err := s.requireAccommodation(ctx, accommodationID); err != nil {
		return nil, nil, err
	}

	entries, err := s.Repo.ListRange(ctx, accommodationID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	blockedSet := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if !e.Available {
			blockedSet[e.Date.Unix()] = struct{}{}
		}
	}

	open, blocked = []time.Time{}, []time.Time{}
	for _, day := range utils.DatesInRange(start, end.AddDate(0, 0, 1)) {
		if _, ok := blockedSet[day.Unix()]; ok {
			blocked = append(blocked, day)
		} else {
			open = append(open, day)
		}
	}
	return open, blocked, nil
}

func (s *DefaultCalendarService) ListOpen(ctx context.Context, accommodationID string, start, end time.Time) ([]time.Time, error) {
	open, _, err := s.project(ctx, accommodationID, start, end)
	return open, err
}

func (s *DefaultCalendarService) ListBlocked(ctx context.Context, accommodationID string, start, end time.Time) ([]time.Time, error) {
	_, blocked, err := s.project(ctx, accommodationID, start, end)
	return blocked, err
}

func (s *DefaultCalendarService) CountOpen(ctx context.Context, accommodationID string, start, end time.Time) (int, error) {
	open, _, err := s.project(ctx, accommodationID, start, end)
	return len(open), err
}

func (s *DefaultCalendarService) CountBlocked(ctx context.Context, accommodationID string, start, end time.Time) (int, error) {
	_, blocked, err := s.project(ctx, accommodationID, start, end)
	return len(blocked), err
}

func (s *DefaultCalendarService) Summary(ctx context.Context, accommodationID string, start, end time.Time) (*models.DateSummary, error) {
	open, blocked, err := s.project(ctx, accommodationID, start, end)
	if err != nil {
		return nil, err
	}
	return &models.DateSummary{
		Start:        utils.NormalizeDate(start),
		End:          utils.NormalizeDate(end),
		Open:         open,
		Blocked:      blocked,
		CountOpen:    len(open),
		CountBlocked: len(blocked),
	}, nil
}

func (s *DefaultCalendarService) ListByAccommodation(ctx context.Context, accommodationID string) ([]models.AvailabilityEntry, error) {
	if err := s.requireAccommodation(ctx, accommodationID); err != nil {
		return nil, err
	}
	entries, err := s.Repo.ListByAccommodation(ctx, accommodationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	return entries, nil
}

func (s *DefaultCalendarService) FirstBlocked(ctx context.Context, accommodationID string, checkIn, checkOut time.Time) (*time.Time, error) {
	entries, err := s.Repo.ListRange(ctx, accommodationID, utils.NormalizeDate(checkIn), utils.NormalizeDate(checkOut))
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	for _, e := range entries {
		if !e.Available {
			day := e.Date
			return &day, nil
		}
	}
	return nil, nil
}
