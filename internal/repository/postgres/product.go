package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
)

const productColumns = `id, name, description, price, image_url, stock, category_id, rating, seller_id, status, created_at, updated_at`

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db Querier
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, image_url, stock, category_id, rating, seller_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Stock,
		product.CategoryID,
		product.Rating,
		product.SellerID,
		product.Status,
	).Scan(
		&product.ID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	return translate(err, domain.ErrConflict)
}

// GetByID retrieves an active product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND status = 'active'`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, translate(err, domain.ErrConflict)
	}

	return &product, nil
}

// LockByID retrieves a product regardless of status with a row lock
func (r *ProductRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, translate(err, domain.ErrConflict)
	}

	return &product, nil
}

// List retrieves all active products
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE status = 'active' ORDER BY created_at DESC`

	products := []*domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

// ListByCategory retrieves active products of a category
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category_id = $1 AND status = 'active'
		ORDER BY created_at DESC
	`

	products := []*domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, categoryID); err != nil {
		return nil, err
	}

	return products, nil
}

// Update overwrites the client-settable fields of an active product
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image_url = $4, stock = $5, category_id = $6, updated_at = NOW()
		WHERE id = $7 AND status = 'active'
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Stock,
		product.CategoryID,
		product.ID,
	).Scan(&product.UpdatedAt)

	return translate(err, domain.ErrConflict)
}

// UpdateRating stores a recomputed rating
func (r *ProductRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64) error {
	query := `UPDATE products SET rating = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, rating, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET status = 'deleted', updated_at = NOW() WHERE id = $1 AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}
