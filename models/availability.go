package models

import "time"

// AvailabilityEntry is an explicit calendar exception for one accommodation and day.
// Days without an entry are open.
type AvailabilityEntry struct {
	AccommodationID string    `bson:"accommodation_id" json:"accommodationId"`
	Date            time.Time `bson:"date" json:"date"`
	Available       bool      `bson:"available" json:"available"`
	Reason          string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

// NewBlockedEntry builds a blocked entry for date (expected normalised).
func NewBlockedEntry(accommodationID string, date time.Time, reason string, now time.Time) AvailabilityEntry {
	return AvailabilityEntry{
		AccommodationID: accommodationID,
		Date:            date,
		Available:       false,
		Reason:          reason,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// DateSummary is a range projection over the calendar.
type DateSummary struct {
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	Open         []time.Time `json:"open"`
	Blocked      []time.Time `json:"blocked"`
	CountOpen    int         `json:"countOpen"`
	CountBlocked int         `json:"countBlocked"`
}
