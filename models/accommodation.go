package models

// AccommodationStatus is the catalog lifecycle of a listing.
type AccommodationStatus string

const (
	AccommodationActive   AccommodationStatus = "ACTIVE"
	AccommodationInactive AccommodationStatus = "INACTIVE"
	AccommodationDeleted  AccommodationStatus = "DELETED"
)

// Accommodation is the read-only view of a catalog listing that admission needs.
type Accommodation struct {
	ID          string              `bson:"id" json:"id"`
	HostID      string              `bson:"host_id" json:"hostId"`
	NightlyRate int64               `bson:"nightly_rate" json:"nightlyRate"` // minor units
	MaxCapacity int                 `bson:"max_capacity" json:"maxCapacity"`
	Status      AccommodationStatus `bson:"status" json:"status"`
}

// Bookable reports whether new stays may be admitted.
func (a Accommodation) Bookable() bool {
	return a.Status == AccommodationActive
}
