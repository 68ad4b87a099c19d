package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// MinGrade is the lowest grade a review may carry
	MinGrade = 1
	// MaxGrade is the highest grade a review may carry
	MaxGrade = 5
)

// Review represents a buyer's review of a product.
// Reviews are immutable once created except for soft deletion.
type Review struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id" validate:"required"`
	Comment     *string   `json:"comment" db:"comment" validate:"omitempty,max=5000"`
	CommentDate time.Time `json:"comment_date" db:"comment_date"`
	Grade       int       `json:"grade" db:"grade" validate:"gte=1,lte=5"`
	Status      Status    `json:"status" db:"status"`
}

// MarshalJSON adds the is_active flag expected by API clients
func (r Review) MarshalJSON() ([]byte, error) {
	type alias Review
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(r), r.Status.IsActive()})
}

// ValidGrade reports whether grade is within [MinGrade, MaxGrade]
func ValidGrade(grade int) bool {
	return grade >= MinGrade && grade <= MaxGrade
}

// RatingAggregate is the mean grade and count over a product's active reviews
type RatingAggregate struct {
	Average float64 `db:"average"`
	Count   int     `db:"count"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create creates a new review; a second active review by the same
	// user for the same product yields ErrConflict
	Create(ctx context.Context, review *Review) error

	// GetByID retrieves an active review by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// List retrieves all active reviews
	List(ctx context.Context) ([]*Review, error)

	// ListByProductID retrieves active reviews of a product
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]*Review, error)

	// ExistsActive reports whether the user holds an active review of the product
	ExistsActive(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Delete soft-deletes a review
	Delete(ctx context.Context, id uuid.UUID) error

	// Aggregate returns the mean grade and count of a product's active reviews
	Aggregate(ctx context.Context, productID uuid.UUID) (RatingAggregate, error)
}
