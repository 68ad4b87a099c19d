package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/pkg/validator"
)

// Subject review events are published on
const EventsSubject = "reviews.events"

// Event types
const (
	EventCreated = "review.created"
	EventDeleted = "review.deleted"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Cache is the per-product review list cache
type Cache interface {
	GetReviewsList(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error)
	SetReviewsList(ctx context.Context, productID uuid.UUID, reviews []*domain.Review) error
	InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error
}

// RatingRecomputer rewrites a product's rating inside the caller's transaction
type RatingRecomputer interface {
	Recompute(ctx context.Context, repos domain.Repositories, productID uuid.UUID) (float64, error)
}

// ReviewEvent represents an event related to a review
type ReviewEvent struct {
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	ProductID uuid.UUID      `json:"product_id"`
	Rating    float64        `json:"rating"`
	Review    *domain.Review `json:"review"`
}

// Service handles review business logic with caching and event publishing
type Service struct {
	store     domain.Store
	ratings   RatingRecomputer
	cache     Cache
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new review service
func NewService(
	store domain.Store,
	ratings RatingRecomputer,
	cache Cache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		ratings:   ratings,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

// List retrieves all active reviews
func (s *Service) List(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.store.Repos().Reviews.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list reviews", err)
		return nil, err
	}

	return reviews, nil
}

// ListByProduct retrieves the active reviews of an active product with caching
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	repos := s.store.Repos()

	if _, err := repos.Products.GetByID(ctx, productID); err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrProductNotFound)
	}

	reviews, err := s.cache.GetReviewsList(ctx, productID)
	if err == nil {
		s.logger.Debugf("Cache hit for product %s reviews", productID)
		return reviews, nil
	}

	s.logger.Debugf("Cache miss for product %s reviews", productID)
	reviews, err = repos.Reviews.ListByProductID(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to get reviews by product ID", err)
		return nil, err
	}

	if err := s.cache.SetReviewsList(ctx, productID, reviews); err != nil {
		s.logger.Warnf("Failed to cache reviews for product %s: %v", productID, err)
	}

	return reviews, nil
}

// Create stores a buyer's review and recomputes the product rating in the
// same transaction
func (s *Service) Create(ctx context.Context, actor *domain.User, review *domain.Review) error {
	if !actor.HasRole(domain.RoleBuyer) {
		return domain.RoleRequiredError(domain.RoleBuyer)
	}

	if !domain.ValidGrade(review.Grade) {
		return domain.ErrInvalidGrade
	}

	if err := validator.Struct(review); err != nil {
		s.logger.Debugf("Review validation failed: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	review.UserID = actor.ID
	review.Status = domain.StatusActive

	var rating float64
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		product, err := repos.Products.LockByID(ctx, review.ProductID)
		if err != nil {
			return domain.WhenNotFound(err, domain.ErrProductNotFound)
		}
		if !product.Status.IsActive() {
			return domain.ErrProductNotFound
		}

		exists, err := repos.Reviews.ExistsActive(ctx, review.UserID, review.ProductID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateReview
		}

		if err := repos.Reviews.Create(ctx, review); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrDuplicateReview
			}
			return err
		}

		rating, err = s.ratings.Recompute(ctx, repos, review.ProductID)
		return err
	})
	if err != nil {
		s.logger.Failure("Failed to create review", err)
		return err
	}

	s.afterCommit(ctx, EventCreated, review, rating)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"grade":      review.Grade,
		"rating":     rating,
	}).Info("Review created successfully")

	return nil
}

// Delete soft-deletes a review and recomputes the product rating in the
// same transaction
func (s *Service) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return domain.RoleRequiredError(domain.RoleAdmin)
	}

	var (
		review *domain.Review
		rating float64
	)
	err := s.store.WithTx(ctx, func(repos domain.Repositories) error {
		var err error
		review, err = repos.Reviews.GetByID(ctx, id)
		if err != nil {
			return domain.WhenNotFound(err, domain.ErrReviewNotFound)
		}

		if _, err := repos.Products.LockByID(ctx, review.ProductID); err != nil {
			return err
		}

		if err := repos.Reviews.Delete(ctx, id); err != nil {
			return domain.WhenNotFound(err, domain.ErrReviewNotFound)
		}
		review.Status = domain.StatusDeleted

		rating, err = s.ratings.Recompute(ctx, repos, review.ProductID)
		return err
	})
	if err != nil {
		s.logger.Failure("Failed to delete review", err)
		return err
	}

	s.afterCommit(ctx, EventDeleted, review, rating)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  id,
		"product_id": review.ProductID,
		"rating":     rating,
	}).Info("Review deleted successfully")

	return nil
}

// afterCommit drops cached state for the product and announces the change.
// Neither step can fail the request.
func (s *Service) afterCommit(ctx context.Context, eventType string, review *domain.Review, rating float64) {
	if err := s.cache.InvalidateAllProductCache(ctx, review.ProductID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", review.ProductID, err)
	}

	s.publishEvent(eventType, review, rating)
}

// publishEvent publishes a review event (non-blocking)
func (s *Service) publishEvent(eventType string, review *domain.Review, rating float64) {
	event := ReviewEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: review.ProductID,
		Rating:    rating,
		Review:    review,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for review %s", review.ID)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.publisher.Publish(ctx, EventsSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for review %s", review.ID)
		}
	}()
}
