package repository

import (
	"context"
	"errors"

	"staybook/utils"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness or
	// exclusion constraint, e.g. two active reservations on the same night.
	ErrConflict = errors.New("write conflicts with an existing record")
	// ErrStaleWrite is returned when a compare-and-set update finds the
	// record no longer in the expected state.
	ErrStaleWrite = errors.New("record changed concurrently")
)

// NewContext bounds a single store round trip.
func NewContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, utils.StoreTimeout)
}
