package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
)

// Decimal places kept in a stored rating
const precision = 2

var recomputesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "product_rating_recomputes_total",
		Help: "Total number of product rating recomputations",
	},
	[]string{"source", "result"},
)

// Invalidator drops cached state for a product
type Invalidator interface {
	InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error
}

// Aggregator derives a product's rating from its active reviews.
// It is the only writer of Product.Rating.
type Aggregator struct {
	store  domain.Store
	cache  Invalidator
	logger *logger.Logger
}

// NewAggregator creates a new rating aggregator. cache may be nil when the
// caller invalidates after its own commits.
func NewAggregator(store domain.Store, cache Invalidator, log *logger.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// Round rounds a mean grade to two decimals, halves away from zero
func Round(average float64) float64 {
	rounded, _ := decimal.NewFromFloat(average).Round(precision).Float64()
	return rounded
}

// Recompute recalculates the product's rating from its active reviews and
// stores it. It runs on the caller's repositories so that the write joins
// the caller's transaction; callers lock the product row beforehand.
func (a *Aggregator) Recompute(ctx context.Context, repos domain.Repositories, productID uuid.UUID) (float64, error) {
	rating, err := a.recompute(ctx, repos, productID)
	if err != nil {
		recomputesTotal.WithLabelValues("write", "error").Inc()
		return 0, err
	}

	recomputesTotal.WithLabelValues("write", "ok").Inc()
	return rating, nil
}

// Reconcile recomputes the rating in a transaction of its own. Products
// that no longer exist are skipped.
func (a *Aggregator) Reconcile(ctx context.Context, productID uuid.UUID) error {
	var rating float64

	err := a.store.WithTx(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Products.LockByID(ctx, productID); err != nil {
			return err
		}

		var err error
		rating, err = a.recompute(ctx, repos, productID)
		return err
	})

	log := a.logger.WithFields(map[string]interface{}{
		"product_id": productID.String(),
	})

	if errors.Is(err, domain.ErrNotFound) {
		recomputesTotal.WithLabelValues("reconcile", "skipped").Inc()
		log.Info("Product not found, skipping rating reconciliation")
		return nil
	}
	if err != nil {
		recomputesTotal.WithLabelValues("reconcile", "error").Inc()
		return err
	}

	recomputesTotal.WithLabelValues("reconcile", "ok").Inc()

	if a.cache != nil {
		if err := a.cache.InvalidateAllProductCache(ctx, productID); err != nil {
			log.Warnf("Failed to invalidate cache after reconcile: %v", err)
		}
	}

	log.With("rating", rating).Info("Product rating reconciled")
	return nil
}

func (a *Aggregator) recompute(ctx context.Context, repos domain.Repositories, productID uuid.UUID) (float64, error) {
	agg, err := repos.Reviews.Aggregate(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("aggregate reviews: %w", err)
	}

	rating := 0.0
	if agg.Count > 0 {
		rating = Round(agg.Average)
	}

	if err := repos.Products.UpdateRating(ctx, productID, rating); err != nil {
		return 0, fmt.Errorf("update product rating: %w", err)
	}

	a.logger.WithFields(map[string]interface{}{
		"product_id": productID.String(),
		"reviews":    agg.Count,
		"rating":     rating,
	}).Debug("Product rating recomputed")

	return rating, nil
}
