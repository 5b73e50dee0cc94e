package models

type UserRole string

const (
	RoleGuest UserRole = "GUEST"
	RoleHost  UserRole = "HOST"
	RoleAdmin UserRole = "ADMIN"
)

// User is the identity record consumed by the engine. Authentication lives elsewhere.
type User struct {
	ID   string   `bson:"id" json:"id"`
	Role UserRole `bson:"role" json:"role"`
}
