package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/catalog_api/internal/domain"
)

// RedisCache implements caching for products and their review lists
type RedisCache struct {
	client         *redis.Client
	productTTL     time.Duration
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, productTTL, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		productTTL:     productTTL,
		reviewsListTTL: reviewsListTTL,
	}
}

func (c *RedisCache) productKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID.String())
}

func (c *RedisCache) reviewsListKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:reviews", productID.String())
}

// GetProduct retrieves a cached product. A miss yields domain.ErrNotFound.
func (c *RedisCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, c.productKey(productID), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// SetProduct fills the cache after a miss. An entry written in the meantime
// is kept.
func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, c.productKey(product.ID), data, c.productTTL).Err()
}

// GetReviewsList retrieves the cached active reviews of a product
func (c *RedisCache) GetReviewsList(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	var reviews []*domain.Review
	if err := c.get(ctx, c.reviewsListKey(productID), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// SetReviewsList stores the active reviews of a product in cache
func (c *RedisCache) SetReviewsList(ctx context.Context, productID uuid.UUID, reviews []*domain.Review) error {
	return c.set(ctx, c.reviewsListKey(productID), reviews, c.reviewsListTTL)
}

// InvalidateAllProductCache invalidates all cache entries for a product
func (c *RedisCache) InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error {
	return c.client.Unlink(ctx, c.productKey(productID), c.reviewsListKey(productID)).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(val, dst)
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
