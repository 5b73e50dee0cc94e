package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/database/repository"
	accommodationRepo "staybook/database/repository/accommodation"
	paymentRepo "staybook/database/repository/payment"
	reservationRepo "staybook/database/repository/reservation"
	userRepo "staybook/database/repository/user"
	"staybook/models"
	"staybook/services/availability"
	"staybook/services/lock"
	"staybook/services/notification"
	"staybook/services/pricing"
	"staybook/utils"

	"go.uber.org/zap"
)

// Deps are the collaborators of DefaultReservationService.
type Deps struct {
	Repo              reservationRepo.ReservationRepository
	AccommodationRepo accommodationRepo.AccommodationRepository
	UserRepo          userRepo.UserRepository
	PaymentRepo       paymentRepo.PaymentRepository
	Calendar          availability.CalendarService
	Locker            lock.Locker
	Publisher         notification.Publisher
	Logger            *zap.Logger
}

// DefaultMaxStayNights is the longest stay admitted when no limit is configured.
const DefaultMaxStayNights = 365

type DefaultReservationService struct {
	Deps
	now           func() time.Time
	maxStayNights int
}

type Option func(*DefaultReservationService)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *DefaultReservationService) { s.now = now }
}

// WithMaxStayNights caps the nights of a single stay. n <= 0 keeps the default.
func WithMaxStayNights(n int) Option {
	return func(s *DefaultReservationService) {
		if n > 0 {
			s.maxStayNights = n
		}
	}
}

func NewReservationService(deps Deps, opts ...Option) *DefaultReservationService {
	if deps.Publisher == nil {
		deps.Publisher = notification.NoopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &DefaultReservationService{Deps: deps, now: time.Now, maxStayNights: DefaultMaxStayNights}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DefaultReservationService) today() time.Time {
	return utils.NormalizeDate(s.now())
}

func (s *DefaultReservationService) loadAccommodation(ctx context.Context, id string) (*models.Accommodation, error) {
	acc, err := s.AccommodationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFound("accommodation %s not found", id)
		}
		return nil, fmt.Errorf("failed to load accommodation %s: %w", id, err)
	}
	return acc, nil
}

func (s *DefaultReservationService) requireGuest(ctx context.Context, id string) error {
	if _, err := s.UserRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFound("guest %s not found", id)
		}
		return fmt.Errorf("failed to load guest %s: %w", id, err)
	}
	return nil
}

func (s *DefaultReservationService) load(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFound("reservation %s not found", id)
		}
		return nil, fmt.Errorf("failed to load reservation %s: %w", id, err)
	}
	return r, nil
}

func retryable(err error) bool {
	return errors.Is(err, repository.ErrConflict) || errors.Is(err, lock.ErrLockTimeout)
}

// withRetry runs attempt once more when it lost a race on the store or the
// lock, then gives up with a Conflict.
func (s *DefaultReservationService) withRetry(op, accommodationID string, attempt func() error) error {
	err := attempt()
	if !retryable(err) {
		return err
	}
	s.Logger.Warn("Reservation write lost a race, retrying",
		zap.String("op", op),
		zap.String("accommodationId", accommodationID),
		zap.Error(err))

	err = attempt()
	if !retryable(err) {
		return err
	}
	if errors.Is(err, lock.ErrLockTimeout) {
		return utils.Conflict("busy", "accommodation %s is busy, try again", accommodationID).Wrap(err)
	}
	return utils.Conflict("concurrent_update", "reservation for accommodation %s conflicts with a concurrent change", accommodationID).Wrap(err)
}

func (s *DefaultReservationService) publish(ctx context.Context, eventType models.ReservationEventType, r models.Reservation) {
	event := models.NewReservationEvent(eventType, r, s.now())
	if err := s.Publisher.Publish(ctx, event); err != nil {
		s.Logger.Warn("Failed to publish reservation event",
			zap.String("type", string(eventType)),
			zap.String("reservationId", r.ID),
			zap.Error(err))
	}
}

func (s *DefaultReservationService) Create(ctx context.Context, in CreateInput) (*models.Reservation, error) {
	acc, err := s.loadAccommodation(ctx, in.AccommodationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireGuest(ctx, in.GuestID); err != nil {
		return nil, err
	}

	checkIn, checkOut := utils.NormalizeDate(in.CheckIn), utils.NormalizeDate(in.CheckOut)
	var created *models.Reservation

	err = s.withRetry("create", acc.ID, func() error {
		return s.AdmitAndCreate(ctx, acc.ID, func(ctx context.Context) error {
			// Re-read the listing so a status or rate change is seen on retry.
			fresh, err := s.loadAccommodation(ctx, acc.ID)
			if err != nil {
				return err
			}
			req := AdmissionRequest{AccommodationID: fresh.ID, CheckIn: checkIn, CheckOut: checkOut, Guests: in.Guests}
			if err := s.admit(ctx, fresh, req); err != nil {
				return err
			}

			r := models.NewReservation(fresh.ID, in.GuestID, checkIn, checkOut, in.Guests,
				pricing.Price(fresh.NightlyRate, checkIn, checkOut), s.now())
			if err := s.Repo.Insert(ctx, r); err != nil {
				return err
			}
			created = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Reservation created",
		zap.String("reservationId", created.ID),
		zap.String("accommodationId", created.AccommodationID),
		zap.String("guestId", created.GuestID),
		zap.String("checkIn", utils.FormatDate(created.CheckInDate)),
		zap.String("checkOut", utils.FormatDate(created.CheckOutDate)),
		zap.Int64("totalPrice", created.TotalPrice))
	s.publish(ctx, models.EventReservationCreated, *created)
	return created, nil
}

// editable rejects terminal reservations and stays that already started.
func (s *DefaultReservationService) editable(r *models.Reservation, action string) error {
	if r.Status.Terminal() {
		return utils.InvalidOperation("terminal_state", "cannot %s a %s reservation", action, r.Status)
	}
	if r.CheckInDate.Before(s.today()) {
		return utils.InvalidOperation("already_started", "cannot %s a reservation that has already started", action)
	}
	return nil
}

func (s *DefaultReservationService) Edit(ctx context.Context, id string, in EditInput) (*models.Reservation, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.editable(current, "edit"); err != nil {
		return nil, err
	}

	checkIn, checkOut := utils.NormalizeDate(in.CheckIn), utils.NormalizeDate(in.CheckOut)
	accommodationID := current.AccommodationID
	var updated *models.Reservation

	err = s.withRetry("edit", accommodationID, func() error {
		return s.AdmitAndCreate(ctx, accommodationID, func(ctx context.Context) error {
			r, err := s.load(ctx, id)
			if err != nil {
				return err
			}
			if err := s.editable(r, "edit"); err != nil {
				return err
			}
			acc, err := s.loadAccommodation(ctx, accommodationID)
			if err != nil {
				return err
			}
			req := AdmissionRequest{AccommodationID: accommodationID, CheckIn: checkIn, CheckOut: checkOut, Guests: in.Guests, ExcludeID: id}
			if err := s.admit(ctx, acc, req); err != nil {
				return err
			}

			r.CheckInDate = checkIn
			r.CheckOutDate = checkOut
			r.NumberOfGuests = in.Guests
			r.TotalPrice = pricing.Price(acc.NightlyRate, checkIn, checkOut)
			r.UpdatedAt = s.now()
			if err := s.Repo.Update(ctx, r); err != nil {
				return err
			}
			updated = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Reservation edited",
		zap.String("reservationId", updated.ID),
		zap.String("checkIn", utils.FormatDate(updated.CheckInDate)),
		zap.String("checkOut", utils.FormatDate(updated.CheckOutDate)),
		zap.Int64("totalPrice", updated.TotalPrice))
	s.publish(ctx, models.EventReservationEdited, *updated)
	return updated, nil
}

// transition loads the reservation under its accommodation's lock, lets
// mutate validate and change it, then stores it.
func (s *DefaultReservationService) transition(ctx context.Context, id string, mutate func(r *models.Reservation) error) (*models.Reservation, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var out *models.Reservation
	err = s.Locker.WithLock(ctx, lock.AccommodationKey(current.AccommodationID), func(ctx context.Context) error {
		r, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(r); err != nil {
			return err
		}
		r.UpdatedAt = s.now()
		if err := s.Repo.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update reservation %s: %w", id, err)
		}
		out = r
		return nil
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return nil, utils.Conflict("busy", "accommodation %s is busy, try again", current.AccommodationID).Wrap(err)
	}
	return out, err
}

func (s *DefaultReservationService) Confirm(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.transition(ctx, id, func(r *models.Reservation) error {
		if r.Status != models.ReservationPending {
			return utils.InvalidOperation("invalid_transition", "only PENDING reservations can be confirmed, got %s", r.Status)
		}
		r.Status = models.ReservationConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Reservation confirmed", zap.String("reservationId", r.ID))
	s.publish(ctx, models.EventReservationConfirmed, *r)
	return r, nil
}

func (s *DefaultReservationService) Cancel(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.transition(ctx, id, func(r *models.Reservation) error {
		if !r.Status.Holds() {
			return utils.InvalidOperation("invalid_transition", "cannot cancel a %s reservation", r.Status)
		}
		if r.CheckInDate.Before(s.today()) {
			return utils.InvalidOperation("already_started", "cannot cancel a reservation that has already started")
		}
		now := s.now()
		r.Status = models.ReservationCancelled
		r.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Reservation cancelled", zap.String("reservationId", r.ID))
	s.publish(ctx, models.EventReservationCancelled, *r)
	return r, nil
}

func (s *DefaultReservationService) CompleteElapsed(ctx context.Context) (int, error) {
	today := s.today()
	due, err := s.Repo.List(ctx, reservationRepo.Filter{Status: models.ReservationConfirmed, CheckOutBy: &today})
	if err != nil {
		return 0, fmt.Errorf("failed to list elapsed reservations: %w", err)
	}

	completed := 0
	for _, candidate := range due {
		r, err := s.transition(ctx, candidate.ID, func(r *models.Reservation) error {
			if r.Status != models.ReservationConfirmed || r.CheckOutDate.After(today) {
				return errSkip
			}
			r.Status = models.ReservationCompleted
			return nil
		})
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			s.Logger.Error("Failed to complete reservation", zap.String("reservationId", candidate.ID), zap.Error(err))
			continue
		}
		completed++
		s.publish(ctx, models.EventReservationCompleted, *r)
	}

	if completed > 0 {
		s.Logger.Info("Elapsed reservations completed", zap.Int("count", completed))
	}
	return completed, nil
}

// errSkip marks a candidate that changed between listing and locking.
var errSkip = errors.New("reservation no longer eligible")

func (s *DefaultReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.load(ctx, id)
}

func (s *DefaultReservationService) list(ctx context.Context, f reservationRepo.Filter) ([]models.Reservation, error) {
	out, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return out, nil
}

func (s *DefaultReservationService) ListAll(ctx context.Context) ([]models.Reservation, error) {
	return s.list(ctx, reservationRepo.Filter{})
}

func (s *DefaultReservationService) ListByAccommodation(ctx context.Context, accommodationID string) ([]models.Reservation, error) {
	if _, err := s.loadAccommodation(ctx, accommodationID); err != nil {
		return nil, err
	}
	return s.list(ctx, reservationRepo.Filter{AccommodationID: accommodationID})
}

func (s *DefaultReservationService) ListByGuest(ctx context.Context, guestID string) ([]models.Reservation, error) {
	if err := s.requireGuest(ctx, guestID); err != nil {
		return nil, err
	}
	return s.list(ctx, reservationRepo.Filter{GuestID: guestID})
}

func (s *DefaultReservationService) ListByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	if !status.Valid() {
		return nil, utils.InvalidOperation("invalid_status", "unknown reservation status %q", status)
	}
	return s.list(ctx, reservationRepo.Filter{Status: status})
}

// Delete removes the reservation and its payment. It is an administrative
// operation and ignores the lifecycle.
func (s *DefaultReservationService) Delete(ctx context.Context, id string) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	// Payment before reservation; either failure aborts the delete.
	var paymentRemoved bool
	err = s.Locker.WithLock(ctx, lock.AccommodationKey(current.AccommodationID), func(ctx context.Context) error {
		if _, err := s.load(ctx, id); err != nil {
			return err
		}
		removed, err := s.PaymentRepo.DeleteByReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete payment of reservation %s: %w", id, err)
		}
		paymentRemoved = removed
		if err := s.Repo.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.NotFound("reservation %s not found", id)
			}
			return fmt.Errorf("failed to delete reservation %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return utils.Conflict("busy", "accommodation %s is busy, try again", current.AccommodationID).Wrap(err)
		}
		return err
	}

	if paymentRemoved {
		s.Logger.Info("Payment deleted with reservation", zap.String("reservationId", id))
	}
	s.Logger.Info("Reservation deleted", zap.String("reservationId", id))
	s.publish(ctx, models.EventReservationDeleted, *current)
	return nil
}

// IsAvailable reports whether [checkIn, checkOut) is free of active
// reservations and blocked days. It takes no lock; the answer may be stale
// by the time the caller acts on it.
func (s *DefaultReservationService) IsAvailable(ctx context.Context, accommodationID string, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = utils.NormalizeDate(checkIn), utils.NormalizeDate(checkOut)
	if err := validateSpan(checkIn, checkOut, s.maxStayNights); err != nil {
		return false, err
	}
	if _, err := s.loadAccommodation(ctx, accommodationID); err != nil {
		return false, err
	}

	overlapping, err := s.Repo.FindOverlapping(ctx, accommodationID, checkIn, checkOut, "")
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping reservations: %w", err)
	}
	if len(overlapping) > 0 {
		return false, nil
	}
	blocked, err := s.Calendar.FirstBlocked(ctx, accommodationID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return blocked == nil, nil
}
