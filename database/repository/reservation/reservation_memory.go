package reservationRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"staybook/database/repository"
	"staybook/models"
)

// MemoryReservationRepo is an arena of reservations by id plus an index by
// accommodation. A single mutex makes the overlap check and the write atomic.
type MemoryReservationRepo struct {
	mu              sync.RWMutex
	byID            map[string]models.Reservation
	byAccommodation map[string]map[string]struct{}
}

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{
		byID:            make(map[string]models.Reservation),
		byAccommodation: make(map[string]map[string]struct{}),
	}
}

// overlapping must be called with mu held.
func (r *MemoryReservationRepo) overlapping(accommodationID string, checkIn, checkOut time.Time, excludeID string) []models.Reservation {
	var out []models.Reservation
	for id := range r.byAccommodation[accommodationID] {
		if id == excludeID {
			continue
		}
		existing := r.byID[id]
		if existing.Status.Holds() && existing.Overlaps(checkIn, checkOut) {
			out = append(out, existing)
		}
	}
	return out
}

func (r *MemoryReservationRepo) Insert(_ context.Context, reservation *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[reservation.ID]; exists {
		return fmt.Errorf("reservation %s: %w", reservation.ID, repository.ErrConflict)
	}
	if reservation.Status.Holds() {
		if clash := r.overlapping(reservation.AccommodationID, reservation.CheckInDate, reservation.CheckOutDate, ""); len(clash) > 0 {
			return fmt.Errorf("reservation %s overlaps %s: %w", reservation.ID, clash[0].ID, repository.ErrConflict)
		}
	}
	r.byID[reservation.ID] = *reservation
	idx, ok := r.byAccommodation[reservation.AccommodationID]
	if !ok {
		idx = make(map[string]struct{})
		r.byAccommodation[reservation.AccommodationID] = idx
	}
	idx[reservation.ID] = struct{}{}
	return nil
}

func (r *MemoryReservationRepo) Update(_ context.Context, reservation *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[reservation.ID]
	if !ok {
		return fmt.Errorf("reservation %s: %w", reservation.ID, repository.ErrNotFound)
	}
	if existing.AccommodationID != reservation.AccommodationID {
		return fmt.Errorf("reservation %s cannot move between accommodations", reservation.ID)
	}
	if reservation.Status.Holds() {
		if clash := r.overlapping(reservation.AccommodationID, reservation.CheckInDate, reservation.CheckOutDate, reservation.ID); len(clash) > 0 {
			return fmt.Errorf("reservation %s overlaps %s: %w", reservation.ID, clash[0].ID, repository.ErrConflict)
		}
	}
	r.byID[reservation.ID] = *reservation
	return nil
}

func (r *MemoryReservationRepo) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reservation, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, repository.ErrNotFound)
	}
	return &reservation, nil
}

func (r *MemoryReservationRepo) FindOverlapping(_ context.Context, accommodationID string, checkIn, checkOut time.Time, excludeID string) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.overlapping(accommodationID, checkIn, checkOut, excludeID)
	sortByCheckIn(out)
	return out, nil
}

func (r *MemoryReservationRepo) List(_ context.Context, f Filter) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Reservation{}
	for _, reservation := range r.byID {
		if f.AccommodationID != "" && reservation.AccommodationID != f.AccommodationID {
			continue
		}
		if f.GuestID != "" && reservation.GuestID != f.GuestID {
			continue
		}
		if f.Status != "" && reservation.Status != f.Status {
			continue
		}
		if f.CheckOutBy != nil && reservation.CheckOutDate.After(*f.CheckOutBy) {
			continue
		}
		out = append(out, reservation)
	}
	sortByCheckIn(out)
	return out, nil
}

func (r *MemoryReservationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("reservation %s: %w", id, repository.ErrNotFound)
	}
	delete(r.byID, id)
	delete(r.byAccommodation[reservation.AccommodationID], id)
	return nil
}

func sortByCheckIn(list []models.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CheckInDate.Equal(list[j].CheckInDate) {
			return list[i].ID < list[j].ID
		}
		return list[i].CheckInDate.Before(list[j].CheckInDate)
	})
}
