package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
)

const categoryColumns = `id, name, parent_id, status, created_at, updated_at`

// CategoryRepository implements domain.CategoryRepository for PostgreSQL
type CategoryRepository struct {
	db Querier
}

// NewCategoryRepository creates a new PostgreSQL category repository
func NewCategoryRepository(db Querier) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, parent_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, category.Name, category.ParentID, category.Status).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)

	return translate(err, domain.ErrConflict)
}

// GetByID retrieves an active category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND status = 'active'`

	var category domain.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, translate(err, domain.ErrConflict)
	}

	return &category, nil
}

// List retrieves all active categories
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE status = 'active' ORDER BY name`

	categories := []*domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}

	return categories, nil
}

// Update overwrites name and parent of an active category
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $1, parent_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'active'
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, category.Name, category.ParentID, category.ID).
		Scan(&category.UpdatedAt)

	return translate(err, domain.ErrConflict)
}

// Delete soft-deletes a category
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE categories SET status = 'deleted', updated_at = NOW() WHERE id = $1 AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}
