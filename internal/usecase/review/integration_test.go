//go:build integration

package review_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/database"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/catalog_api/internal/repository/cache"
	"github.com/Pesokrava/catalog_api/internal/repository/postgres"
	"github.com/Pesokrava/catalog_api/internal/usecase/category"
	"github.com/Pesokrava/catalog_api/internal/usecase/product"
	"github.com/Pesokrava/catalog_api/internal/usecase/rating"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subjects)
}

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "catalog",
				"POSTGRES_PASSWORD": "catalog",
				"POSTGRES_DB":       "catalog",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://catalog:catalog@%s:%s/catalog?sslmode=disable", host, port.Port())
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db, "../../../migrations"))
	return db
}

type fixture struct {
	store      *postgres.Store
	products   *product.Service
	reviews    *review.Service
	categories *category.Service
	publisher  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupPostgres(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.New("test")
	store := postgres.NewStore(db)
	cache := cacheRepo.NewRedisCache(client, time.Minute, time.Minute)
	publisher := &recordingPublisher{}

	return &fixture{
		store:      store,
		products:   product.NewService(store, cache, log),
		reviews:    review.NewService(store, rating.NewAggregator(store, cache, log), cache, publisher, log),
		categories: category.NewService(store, log),
		publisher:  publisher,
	}
}

func (f *fixture) user(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:          fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		HashedPassword: "x",
		Role:           role,
		Status:         domain.StatusActive,
	}
	require.NoError(t, f.store.Repos().Users.Create(context.Background(), u))
	return u
}

func TestRatingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, domain.RoleAdmin)
	seller := f.user(t, domain.RoleSeller)
	firstBuyer := f.user(t, domain.RoleBuyer)
	secondBuyer := f.user(t, domain.RoleBuyer)

	cat := &domain.Category{Name: "Books"}
	require.NoError(t, f.categories.Create(ctx, admin, cat))

	p := &domain.Product{Name: "Go in Practice", Price: 39.9, Stock: 3, CategoryID: cat.ID}
	require.NoError(t, f.products.Create(ctx, seller, p))

	first := &domain.Review{ProductID: p.ID, Grade: 4}
	require.NoError(t, f.reviews.Create(ctx, firstBuyer, first))
	assertRating(t, f, p, 4.0)

	second := &domain.Review{ProductID: p.ID, Grade: 2}
	require.NoError(t, f.reviews.Create(ctx, secondBuyer, second))
	assertRating(t, f, p, 3.0)

	require.NoError(t, f.reviews.Delete(ctx, admin, first.ID))
	assertRating(t, f, p, 2.0)

	listed, err := f.reviews.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	assert.Eventually(t, func() bool { return f.publisher.count() == 3 }, 5*time.Second, 20*time.Millisecond)
}

func TestDuplicateReviewRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, domain.RoleAdmin)
	seller := f.user(t, domain.RoleSeller)
	buyer := f.user(t, domain.RoleBuyer)

	cat := &domain.Category{Name: "Games"}
	require.NoError(t, f.categories.Create(ctx, admin, cat))
	p := &domain.Product{Name: "Board game", Price: 20, CategoryID: cat.ID}
	require.NoError(t, f.products.Create(ctx, seller, p))

	require.NoError(t, f.reviews.Create(ctx, buyer, &domain.Review{ProductID: p.ID, Grade: 5}))

	err := f.reviews.Create(ctx, buyer, &domain.Review{ProductID: p.ID, Grade: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)
	assertRating(t, f, p, 5.0)
}

func TestDeactivatedCategoryHidesProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, domain.RoleAdmin)
	seller := f.user(t, domain.RoleSeller)

	cat := &domain.Category{Name: "Garden"}
	require.NoError(t, f.categories.Create(ctx, admin, cat))
	p := &domain.Product{Name: "Shovel", Price: 12.5, Stock: 1, CategoryID: cat.ID}
	require.NoError(t, f.products.Create(ctx, seller, p))

	_, err := f.products.GetByID(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, admin, cat.ID))

	_, err = f.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryUnavailable)
}

func assertRating(t *testing.T, f *fixture, p *domain.Product, want float64) {
	t.Helper()
	stored, err := f.store.Repos().Products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.InDelta(t, want, stored.Rating, 1e-9)
}
