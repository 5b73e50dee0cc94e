package reservation

import (
	"context"
	"fmt"
	"time"

	"staybook/models"
	"staybook/services/lock"
	"staybook/utils"
)

// Reason codes carried by admission rejections.
const (
	ReasonInvalidDates     = "invalid_dates"
	ReasonPastDate         = "past_date"
	ReasonInvalidGuests    = "invalid_guests"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonNotBookable      = "not_bookable"
	ReasonOverlap          = "overlap"
	ReasonBlockedDate      = "blocked_date"
	ReasonStayTooLong      = "stay_too_long"
)

// AdmitAndCreate is the per-accommodation critical section. Every check that
// reads the reservation index or calendar and every write that depends on it
// runs inside fn.
func (s *DefaultReservationService) AdmitAndCreate(ctx context.Context, accommodationID string, fn func(ctx context.Context) error) error {
	return s.Locker.WithLock(ctx, lock.AccommodationKey(accommodationID), fn)
}

func (s *DefaultReservationService) CheckAdmission(ctx context.Context, req AdmissionRequest) error {
	acc, err := s.loadAccommodation(ctx, req.AccommodationID)
	if err != nil {
		return err
	}
	return s.admit(ctx, acc, req)
}

func validateRange(checkIn, checkOut, today time.Time, maxNights int) error {
	if err := validateSpan(checkIn, checkOut, maxNights); err != nil {
		return err
	}
	if checkIn.Before(today) {
		return utils.InvalidOperation(ReasonPastDate, "check-in %s is in the past", utils.FormatDate(checkIn))
	}
	return nil
}

// validateSpan checks ordering and length of [checkIn, checkOut).
func validateSpan(checkIn, checkOut time.Time, maxNights int) error {
	if !checkIn.Before(checkOut) {
		return utils.InvalidOperation(ReasonInvalidDates, "check-in %s must be before check-out %s",
			utils.FormatDate(checkIn), utils.FormatDate(checkOut))
	}
	if maxNights > 0 && utils.DaysBetween(checkIn, checkOut) > maxNights {
		return utils.InvalidOperation(ReasonStayTooLong, "stay from %s to %s exceeds %d nights",
			utils.FormatDate(checkIn), utils.FormatDate(checkOut), maxNights)
	}
	return nil
}

// admit applies the rules in order and stops at the first failure.
func (s *DefaultReservationService) admit(ctx context.Context, acc *models.Accommodation, req AdmissionRequest) error {
	checkIn, checkOut := utils.NormalizeDate(req.CheckIn), utils.NormalizeDate(req.CheckOut)

	if err := validateRange(checkIn, checkOut, s.today(), s.maxStayNights); err != nil {
		return err
	}
	if req.Guests < 1 {
		return utils.InvalidOperation(ReasonInvalidGuests, "number of guests must be at least 1")
	}
	if req.Guests > acc.MaxCapacity {
		return utils.InvalidOperation(ReasonCapacityExceeded, "number of guests (%d) exceeds maximum capacity (%d)",
			req.Guests, acc.MaxCapacity)
	}
	if !acc.Bookable() {
		return utils.InvalidOperation(ReasonNotBookable, "accommodation %s is %s", acc.ID, acc.Status)
	}

	overlapping, err := s.Repo.FindOverlapping(ctx, acc.ID, checkIn, checkOut, req.ExcludeID)
	if err != nil {
		return fmt.Errorf("failed to check overlapping reservations: %w", err)
	}
	if len(overlapping) > 0 {
		return utils.InvalidOperation(ReasonOverlap, "accommodation is already reserved from %s to %s",
			utils.FormatDate(overlapping[0].CheckInDate), utils.FormatDate(overlapping[0].CheckOutDate))
	}

	blocked, err := s.Calendar.FirstBlocked(ctx, acc.ID, checkIn, checkOut)
	if err != nil {
		return err
	}
	if blocked != nil {
		return utils.InvalidOperation(ReasonBlockedDate, "accommodation is not available on %s", utils.FormatDate(*blocked))
	}
	return nil
}
