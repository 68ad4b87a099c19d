package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
)

const userColumns = `id, email, hashed_password, role, status, created_at`

// UserRepository implements domain.UserRepository for PostgreSQL
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, hashed_password, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, user.Email, user.HashedPassword, user.Role, user.Status).
		Scan(&user.ID, &user.CreatedAt)

	return translate(err, domain.ErrAlreadyExists)
}

// GetByID retrieves an active user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND status = 'active'`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translate(err, domain.ErrAlreadyExists)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email regardless of status
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, translate(err, domain.ErrAlreadyExists)
	}

	return &user, nil
}
