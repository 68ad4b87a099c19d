package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category is a node of the catalog tree
type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name" validate:"required,min=3,max=50"`
	ParentID  *uuid.UUID `json:"parent_id" db:"parent_id"`
	Status    Status     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// MarshalJSON adds the is_active flag expected by API clients
func (c Category) MarshalJSON() ([]byte, error) {
	type alias Category
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(c), c.Status.IsActive()})
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *Category) error

	// GetByID retrieves an active category by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// List retrieves all active categories
	List(ctx context.Context) ([]*Category, error)

	// Update overwrites name and parent of an active category
	Update(ctx context.Context, category *Category) error

	// Delete soft-deletes a category
	Delete(ctx context.Context, id uuid.UUID) error
}
