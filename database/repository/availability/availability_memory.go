package availabilityRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"staybook/database/repository"
	"staybook/models"
)

type entryKey struct {
	accommodationID string
	day             int64
}

// MemoryCalendarRepo keeps entries in a map keyed by (accommodation, day),
// which gives the one-entry-per-day uniqueness for free.
type MemoryCalendarRepo struct {
	mu      sync.RWMutex
	entries map[entryKey]models.AvailabilityEntry
}

func NewMemoryCalendarRepo() *MemoryCalendarRepo {
	return &MemoryCalendarRepo{entries: make(map[entryKey]models.AvailabilityEntry)}
}

func keyOf(accommodationID string, date time.Time) entryKey {
	return entryKey{accommodationID: accommodationID, day: date.Unix()}
}

func (r *MemoryCalendarRepo) Get(_ context.Context, accommodationID string, date time.Time) (*models.AvailabilityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[keyOf(accommodationID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (r *MemoryCalendarRepo) Upsert(_ context.Context, entry models.AvailabilityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(entry.AccommodationID, entry.Date)
	if existing, ok := r.entries[k]; ok {
		entry.CreatedAt = existing.CreatedAt
	}
	r.entries[k] = entry
	return nil
}

func (r *MemoryCalendarRepo) Delete(_ context.Context, accommodationID string, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(accommodationID, date)
	if _, ok := r.entries[k]; !ok {
		return false, nil
	}
	delete(r.entries, k)
	return true, nil
}

func (r *MemoryCalendarRepo) ListRange(_ context.Context, accommodationID string, from, to time.Time) ([]models.AvailabilityEntry, error) {
	return r.collect(func(e models.AvailabilityEntry) bool {
		return e.AccommodationID == accommodationID && !e.Date.Before(from) && e.Date.Before(to)
	}), nil
}

func (r *MemoryCalendarRepo) ListByAccommodation(_ context.Context, accommodationID string) ([]models.AvailabilityEntry, error) {
	return r.collect(func(e models.AvailabilityEntry) bool {
		return e.AccommodationID == accommodationID
	}), nil
}

// Len is the total number of stored entries.
func (r *MemoryCalendarRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *MemoryCalendarRepo) collect(match func(models.AvailabilityEntry) bool) []models.AvailabilityEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.AvailabilityEntry{}
	for _, e := range r.entries {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
