package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is the capability a user holds
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User represents an account in the system
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email" validate:"required,email,max=255"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           Role      `json:"role" db:"role" validate:"required,oneof=buyer seller admin"`
	Status         Status    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// HasRole reports whether the user is active and holds role
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Status.IsActive() && u.Role == role
}

// MarshalJSON adds the is_active flag expected by API clients
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(u), u.Status.IsActive()})
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a user; a taken email yields ErrAlreadyExists
	Create(ctx context.Context, user *User) error

	// GetByID retrieves an active user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email regardless of status
	GetByEmail(ctx context.Context, email string) (*User, error)
}
