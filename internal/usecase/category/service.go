package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/pkg/validator"
)

// Service handles category business logic
type Service struct {
	store  domain.Store
	logger *logger.Logger
}

// NewService creates a new category service
func NewService(store domain.Store, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
	}
}

// List retrieves all active categories
func (s *Service) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.Repos().Categories.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", err)
		return nil, err
	}

	return categories, nil
}

// GetByID retrieves an active category
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.store.Repos().Categories.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrCategoryNotFound)
	}

	return category, nil
}

// Create creates a category
func (s *Service) Create(ctx context.Context, actor *domain.User, category *domain.Category) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return domain.RoleRequiredError(domain.RoleAdmin)
	}

	if err := validator.Struct(category); err != nil {
		s.logger.Debugf("Category validation failed: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	category.Status = domain.StatusActive

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if err := checkParent(ctx, repos, uuid.Nil, category.ParentID); err != nil {
			return err
		}
		return repos.Categories.Create(ctx, category)
	})
	if err != nil {
		s.logger.Failure("Failed to create category", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Category created successfully")

	return nil
}

// Update overwrites the name and parent of a category
func (s *Service) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input *domain.Category) (*domain.Category, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.RoleRequiredError(domain.RoleAdmin)
	}

	if err := validator.Struct(input); err != nil {
		s.logger.Debugf("Category validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var updated *domain.Category
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		category, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return domain.WhenNotFound(err, domain.ErrCategoryNotFound)
		}

		if err := checkParent(ctx, repos, id, input.ParentID); err != nil {
			return err
		}

		category.Name = input.Name
		category.ParentID = input.ParentID
		if err := repos.Categories.Update(ctx, category); err != nil {
			return domain.WhenNotFound(err, domain.ErrCategoryNotFound)
		}

		updated = category
		return nil
	})
	if err != nil {
		s.logger.Failure("Failed to update category", err)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"category_id": id,
	}).Info("Category updated successfully")

	return updated, nil
}

// Delete soft-deletes a category. Its products are left as they are.
func (s *Service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return domain.RoleRequiredError(domain.RoleAdmin)
	}

	err := s.store.Repos().Categories.Delete(ctx, id)
	if err != nil {
		return domain.WhenNotFound(err, domain.ErrCategoryNotFound)
	}

	s.logger.WithFields(map[string]interface{}{
		"category_id": id,
	}).Info("Category deleted successfully")

	return nil
}

// checkParent ensures parentID, when set, names another active category
func checkParent(ctx context.Context, repos domain.Repositories, self uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == self {
		return domain.ErrParentUnavailable
	}
	if _, err := repos.Categories.GetByID(ctx, *parentID); err != nil {
		return domain.WhenNotFound(err, domain.ErrParentUnavailable)
	}
	return nil
}
