package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/pkg/validator"
)

// Cache is the product read cache
type Cache interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error
}

// Service handles product business logic
type Service struct {
	store  domain.Store
	cache  Cache
	logger *logger.Logger
}

// NewService creates a new product service
func NewService(store domain.Store, cache Cache, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// List retrieves all active products
func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.store.Repos().Products.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	return products, nil
}

// ListByCategory retrieves the active products of an active category
func (s *Service) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	repos := s.store.Repos()

	if _, err := repos.Categories.GetByID(ctx, categoryID); err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrCategoryNotFound)
	}

	products, err := repos.Products.ListByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error("Failed to list products by category", err)
		return nil, err
	}

	return products, nil
}

// GetByID retrieves an active product whose category is still active
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	repos := s.store.Repos()

	product, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Failed to read product %s from cache: %v", id, err)
		}

		product, err = repos.Products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debugf("Product not found: %s", id)
				return nil, domain.ErrProductNotFound
			}
			s.logger.Error("Failed to get product", err)
			return nil, err
		}

		if err := s.cache.SetProduct(ctx, product); err != nil {
			s.logger.Warnf("Failed to cache product %s: %v", id, err)
		}
	}

	// Category deactivation does not touch products, so this is never cached.
	if _, err := repos.Categories.GetByID(ctx, product.CategoryID); err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrCategoryUnavailable)
	}

	return product, nil
}

// Create creates a new product owned by the acting seller
func (s *Service) Create(ctx context.Context, actor *domain.User, product *domain.Product) error {
	if !actor.HasRole(domain.RoleSeller) {
		return domain.RoleRequiredError(domain.RoleSeller)
	}

	if err := validator.Struct(product); err != nil {
		s.logger.Debugf("Product validation failed: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	product.SellerID = actor.ID
	product.Rating = 0
	product.Status = domain.StatusActive

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Categories.GetByID(ctx, product.CategoryID); err != nil {
			return domain.WhenNotFound(err, domain.ErrCategoryUnavailable)
		}
		return repos.Products.Create(ctx, product)
	})
	if err != nil {
		s.logger.Failure("Failed to create product", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"seller_id":  product.SellerID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return nil
}

// Update overwrites every client-settable field of a product owned by the actor
func (s *Service) Update(ctx context.Context, actor *domain.User, id uuid.UUID, input *domain.Product) (*domain.Product, error) {
	if !actor.HasRole(domain.RoleSeller) {
		return nil, domain.RoleRequiredError(domain.RoleSeller)
	}

	if err := validator.Struct(input); err != nil {
		s.logger.Debugf("Product validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	var updated *domain.Product
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		product, err := s.lockOwned(ctx, repos, actor, id)
		if err != nil {
			return err
		}

		if _, err := repos.Categories.GetByID(ctx, input.CategoryID); err != nil {
			return domain.WhenNotFound(err, domain.ErrCategoryUnavailable)
		}

		product.ApplyInput(input)
		if err := repos.Products.Update(ctx, product); err != nil {
			return domain.WhenNotFound(err, domain.ErrProductNotFound)
		}

		updated = product
		return nil
	})
	if err != nil {
		s.logger.Failure("Failed to update product", err)
		return nil, err
	}

	s.invalidate(ctx, id)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
		"name":       updated.Name,
	}).Info("Product updated successfully")

	return updated, nil
}

// Delete soft-deletes a product owned by the actor
func (s *Service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !actor.HasRole(domain.RoleSeller) {
		return domain.RoleRequiredError(domain.RoleSeller)
	}

	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		product, err := s.lockOwned(ctx, repos, actor, id)
		if err != nil {
			return err
		}

		if _, err := repos.Categories.GetByID(ctx, product.CategoryID); err != nil {
			return domain.WhenNotFound(err, domain.ErrCategoryUnavailable)
		}

		return domain.WhenNotFound(repos.Products.Delete(ctx, id), domain.ErrProductNotFound)
	})
	if err != nil {
		s.logger.Failure("Failed to delete product", err)
		return err
	}

	s.invalidate(ctx, id)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// lockOwned locks an active product and checks the actor owns it
func (s *Service) lockOwned(ctx context.Context, repos domain.Repositories, actor *domain.User, id uuid.UUID) (*domain.Product, error) {
	product, err := repos.Products.LockByID(ctx, id)
	if err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrProductNotFound)
	}
	if !product.Status.IsActive() {
		return nil, domain.ErrProductNotFound
	}
	if product.SellerID != actor.ID {
		return nil, domain.ErrNotProductOwner
	}
	return product, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.InvalidateAllProductCache(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", id, err)
	}
}
