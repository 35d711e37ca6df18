package domain

import "time"

// Role represents a user's access level.
type Role string

const (
	RoleRider Role = "rider"
	RoleAdmin Role = "admin"
)

// User represents a rider account in the system.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         Role
	CreatedAt    time.Time
}
