package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog.
// Rating is derived from active reviews and only the rating aggregator writes it.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,min=3,max=100"`
	Description *string   `json:"description" db:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" db:"price" validate:"gt=0"`
	ImageURL    *string   `json:"image_url" db:"image_url" validate:"omitempty,max=200"`
	Stock       int       `json:"stock" db:"stock" validate:"gte=0"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id" validate:"required"`
	Rating      float64   `json:"rating" db:"rating"`
	SellerID    uuid.UUID `json:"seller_id" db:"seller_id"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MarshalJSON adds the is_active flag expected by API clients
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(p), p.Status.IsActive()})
}

// ApplyInput overwrites every client-settable field with the values from in
func (p *Product) ApplyInput(in *Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves an active product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// LockByID retrieves a product regardless of status and locks its row
	// until the surrounding transaction ends
	LockByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List retrieves all active products
	List(ctx context.Context) ([]*Product, error)

	// ListByCategory retrieves active products of a category
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Product, error)

	// Update overwrites the client-settable fields of an active product
	Update(ctx context.Context, product *Product) error

	// UpdateRating stores a recomputed rating regardless of product status
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error

	// Delete soft-deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
