package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
)

const reviewColumns = `id, user_id, product_id, comment, comment_date, grade, status`

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db Querier
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db Querier) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review. The partial unique index on
// (user_id, product_id) for active reviews turns a duplicate into ErrConflict.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (user_id, product_id, comment, grade, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, comment_date
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.UserID,
		review.ProductID,
		review.Comment,
		review.Grade,
		review.Status,
	).Scan(
		&review.ID,
		&review.CommentDate,
	)

	return translate(err, domain.ErrConflict)
}

// GetByID retrieves an active review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 AND status = 'active'`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, translate(err, domain.ErrConflict)
	}

	return &review, nil
}

// List retrieves all active reviews
func (r *ReviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE status = 'active' ORDER BY comment_date DESC`

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query); err != nil {
		return nil, err
	}

	return reviews, nil
}

// ListByProductID retrieves active reviews of a product
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1 AND status = 'active'
		ORDER BY comment_date DESC
	`

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, productID); err != nil {
		return nil, err
	}

	return reviews, nil
}

// ExistsActive reports whether the user holds an active review of the product
func (r *ReviewRepository) ExistsActive(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2 AND status = 'active')`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, productID); err != nil {
		return false, err
	}

	return exists, nil
}

// Delete soft-deletes a review
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE reviews SET status = 'deleted' WHERE id = $1 AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Aggregate returns the mean grade and count of a product's active reviews.
// The mean is 0 when there are none.
func (r *ReviewRepository) Aggregate(ctx context.Context, productID uuid.UUID) (domain.RatingAggregate, error) {
	query := `
		SELECT COALESCE(AVG(grade), 0)::float8 AS average, COUNT(*) AS count
		FROM reviews
		WHERE product_id = $1 AND status = 'active'
	`

	var agg domain.RatingAggregate
	if err := r.db.GetContext(ctx, &agg, query, productID); err != nil {
		return domain.RatingAggregate{}, err
	}

	return agg, nil
}
