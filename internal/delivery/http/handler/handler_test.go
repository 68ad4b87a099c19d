package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pesokrava/catalog_api/internal/delivery/http/middleware"
	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/domain/mocks"
	"github.com/Pesokrava/catalog_api/internal/pkg/auth"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/category"
	"github.com/Pesokrava/catalog_api/internal/usecase/product"
	"github.com/Pesokrava/catalog_api/internal/usecase/rating"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
	"github.com/Pesokrava/catalog_api/internal/usecase/user"
)

// MockCache implements the product and review caches
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCache) SetProduct(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockCache) GetReviewsList(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockCache) SetReviewsList(ctx context.Context, productID uuid.UUID, reviews []*domain.Review) error {
	args := m.Called(ctx, productID, reviews)
	return args.Error(0)
}

func (m *MockCache) InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of review.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type fixture struct {
	store     *mocks.Store
	cache     *MockCache
	publisher *MockEventPublisher
	jwt       *auth.JWTManager

	products   *ProductHandler
	reviews    *ReviewHandler
	categories *CategoryHandler
	users      *UserHandler
}

func newFixture() *fixture {
	log := logger.New("test")
	f := &fixture{
		store:     mocks.NewStore(),
		cache:     new(MockCache),
		publisher: new(MockEventPublisher),
		jwt:       auth.NewJWTManager("test-secret", time.Minute, time.Hour),
	}

	f.products = NewProductHandler(product.NewService(f.store, f.cache, log), log)
	f.reviews = NewReviewHandler(review.NewService(f.store, rating.NewAggregator(f.store, nil, log), f.cache, f.publisher, log), log)
	f.categories = NewCategoryHandler(category.NewService(f.store, log), log)
	f.users = NewUserHandler(user.NewService(f.store, f.jwt, bcrypt.MinCost, log), log)
	return f
}

func newUser(role domain.Role) *domain.User {
	return &domain.User{ID: uuid.New(), Email: string(role) + "@example.com", Role: role, Status: domain.StatusActive}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func as(req *http.Request, u *domain.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestProductHandler_List(t *testing.T) {
	f := newFixture()
	f.store.Products.On("List", mock.Anything).Return([]*domain.Product{
		{ID: uuid.New(), Name: "Laptop", Price: 10, Status: domain.StatusActive},
	}, nil)

	rec := httptest.NewRecorder()
	f.products.List(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, true, data[0].(map[string]interface{})["is_active"])
}

func TestProductHandler_Create_Success(t *testing.T) {
	f := newFixture()
	seller := newUser(domain.RoleSeller)
	categoryID := uuid.New()

	f.store.Categories.On("GetByID", mock.Anything, categoryID).Return(&domain.Category{ID: categoryID}, nil)
	f.store.Products.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := jsonRequest(t, http.MethodPost, "/products", ProductRequest{
		Name: "Laptop", Price: 999.99, Stock: 2, CategoryID: categoryID,
	})
	rec := httptest.NewRecorder()
	f.products.Create(rec, as(req, seller))

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, seller.ID.String(), data["seller_id"])
	assert.Equal(t, 0.0, data["rating"])
}

func TestProductHandler_Create_Errors(t *testing.T) {
	categoryID := uuid.New()

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture()
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		f.products.Create(rec, as(req, newUser(domain.RoleSeller)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("schema violation", func(t *testing.T) {
		f := newFixture()
		req := jsonRequest(t, http.MethodPost, "/products", ProductRequest{Name: "Laptop", Price: -1, CategoryID: categoryID})
		rec := httptest.NewRecorder()
		f.products.Create(rec, as(req, newUser(domain.RoleSeller)))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "price")
	})

	t.Run("inactive category", func(t *testing.T) {
		f := newFixture()
		f.store.Categories.On("GetByID", mock.Anything, categoryID).Return(nil, domain.ErrNotFound)
		req := jsonRequest(t, http.MethodPost, "/products", ProductRequest{Name: "Laptop", Price: 1, CategoryID: categoryID})
		rec := httptest.NewRecorder()
		f.products.Create(rec, as(req, newUser(domain.RoleSeller)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Category not found", decode(t, rec)["error"])
	})

	t.Run("no caller", func(t *testing.T) {
		f := newFixture()
		req := jsonRequest(t, http.MethodPost, "/products", ProductRequest{Name: "Laptop", Price: 1, CategoryID: categoryID})
		rec := httptest.NewRecorder()
		f.products.Create(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	f := newFixture()
	categoryID := uuid.New()
	p := &domain.Product{ID: uuid.New(), Name: "Laptop", Price: 10, CategoryID: categoryID, Rating: 3, Status: domain.StatusActive}

	f.cache.On("GetProduct", mock.Anything, p.ID).Return(p, nil)
	f.store.Categories.On("GetByID", mock.Anything, categoryID).Return(&domain.Category{ID: categoryID}, nil)

	rec := httptest.NewRecorder()
	f.products.GetByID(rec, withID(httptest.NewRequest(http.MethodGet, "/products/"+p.ID.String(), nil), p.ID.String()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, decode(t, rec)["data"].(map[string]interface{})["rating"])
}

func TestProductHandler_GetByID_Errors(t *testing.T) {
	t.Run("invalid uuid", func(t *testing.T) {
		f := newFixture()
		rec := httptest.NewRecorder()
		f.products.GetByID(rec, withID(httptest.NewRequest(http.MethodGet, "/products/abc", nil), "abc"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid product ID", decode(t, rec)["error"])
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.cache.On("GetProduct", mock.Anything, id).Return(nil, domain.ErrNotFound)
		f.store.Products.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
		rec := httptest.NewRecorder()
		f.products.GetByID(rec, withID(httptest.NewRequest(http.MethodGet, "/", nil), id.String()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Product not found", decode(t, rec)["error"])
	})
}

func TestProductHandler_Update_NotOwner(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	categoryID := uuid.New()

	f.store.Products.On("LockByID", mock.Anything, id).Return(&domain.Product{
		ID: id, SellerID: uuid.New(), CategoryID: categoryID, Status: domain.StatusActive,
	}, nil)

	req := jsonRequest(t, http.MethodPut, "/products/"+id.String(), ProductRequest{Name: "Laptop", Price: 1, CategoryID: categoryID})
	rec := httptest.NewRecorder()
	f.products.Update(rec, as(withID(req, id.String()), newUser(domain.RoleSeller)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductHandler_Delete(t *testing.T) {
	f := newFixture()
	seller := newUser(domain.RoleSeller)
	id := uuid.New()
	categoryID := uuid.New()

	f.store.Products.On("LockByID", mock.Anything, id).Return(&domain.Product{
		ID: id, SellerID: seller.ID, CategoryID: categoryID, Status: domain.StatusActive,
	}, nil)
	f.store.Categories.On("GetByID", mock.Anything, categoryID).Return(&domain.Category{ID: categoryID}, nil)
	f.store.Products.On("Delete", mock.Anything, id).Return(nil)
	f.cache.On("InvalidateAllProductCache", mock.Anything, id).Return(nil)

	rec := httptest.NewRecorder()
	f.products.Delete(rec, as(withID(httptest.NewRequest(http.MethodDelete, "/", nil), id.String()), seller))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Product marked as inactive", body["message"])
}

func TestReviewHandler_Create(t *testing.T) {
	f := newFixture()
	buyer := newUser(domain.RoleBuyer)
	productID := uuid.New()

	f.store.Products.On("LockByID", mock.Anything, productID).Return(&domain.Product{ID: productID, Status: domain.StatusActive}, nil)
	f.store.Reviews.On("ExistsActive", mock.Anything, buyer.ID, productID).Return(false, nil)
	f.store.Reviews.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.store.Reviews.On("Aggregate", mock.Anything, productID).Return(domain.RatingAggregate{Average: 4, Count: 1}, nil)
	f.store.Products.On("UpdateRating", mock.Anything, productID, 4.0).Return(nil)
	f.cache.On("InvalidateAllProductCache", mock.Anything, productID).Return(nil)
	f.publisher.On("Publish", mock.Anything, review.EventsSubject, mock.Anything).Return(nil).Maybe()

	req := jsonRequest(t, http.MethodPost, "/reviews", CreateReviewRequest{ProductID: productID, Grade: 4})
	rec := httptest.NewRecorder()
	f.reviews.Create(rec, as(req, buyer))

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, buyer.ID.String(), data["user_id"])
	assert.Equal(t, true, data["is_active"])
	f.store.AssertExpectations(t)
}

func TestReviewHandler_Create_Errors(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name    string
		grade   int
		missing bool
		exists  bool
		status  int
		msg     string
	}{
		{"grade too low", 0, false, false, http.StatusUnprocessableEntity, "Grade should be in range 1-5"},
		{"grade too high", 6, false, false, http.StatusUnprocessableEntity, "Grade should be in range 1-5"},
		{"grade too high on missing product", 6, true, false, http.StatusUnprocessableEntity, "Grade should be in range 1-5"},
		{"grade too high on duplicate", 6, false, true, http.StatusUnprocessableEntity, "Grade should be in range 1-5"},
		{"missing product", 3, true, false, http.StatusNotFound, "Product not found"},
		{"duplicate", 3, false, true, http.StatusConflict, "You already have a review for this product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			buyer := newUser(domain.RoleBuyer)
			if tt.missing {
				f.store.Products.On("LockByID", mock.Anything, productID).Return(nil, domain.ErrNotFound)
			} else {
				f.store.Products.On("LockByID", mock.Anything, productID).Return(&domain.Product{ID: productID, Status: domain.StatusActive}, nil)
			}
			f.store.Reviews.On("ExistsActive", mock.Anything, buyer.ID, productID).Return(tt.exists, nil)

			req := jsonRequest(t, http.MethodPost, "/reviews", CreateReviewRequest{ProductID: productID, Grade: tt.grade})
			rec := httptest.NewRecorder()
			f.reviews.Create(rec, as(req, buyer))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decode(t, rec)["error"])
			if tt.status == http.StatusUnprocessableEntity {
				assert.Zero(t, f.store.TxCount)
			}
		})
	}
}

func TestReviewHandler_Delete(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	productID := uuid.New()

	f.store.Reviews.On("GetByID", mock.Anything, id).Return(&domain.Review{ID: id, ProductID: productID, Grade: 4, Status: domain.StatusActive}, nil)
	f.store.Products.On("LockByID", mock.Anything, productID).Return(&domain.Product{ID: productID, Status: domain.StatusActive}, nil)
	f.store.Reviews.On("Delete", mock.Anything, id).Return(nil)
	f.store.Reviews.On("Aggregate", mock.Anything, productID).Return(domain.RatingAggregate{}, nil)
	f.store.Products.On("UpdateRating", mock.Anything, productID, 0.0).Return(nil)
	f.cache.On("InvalidateAllProductCache", mock.Anything, productID).Return(nil)
	f.publisher.On("Publish", mock.Anything, review.EventsSubject, mock.Anything).Return(nil).Maybe()

	rec := httptest.NewRecorder()
	f.reviews.Delete(rec, as(withID(httptest.NewRequest(http.MethodDelete, "/", nil), id.String()), newUser(domain.RoleAdmin)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Review deleted", decode(t, rec)["message"])
}

func TestReviewHandler_Delete_RequiresAdmin(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.reviews.Delete(rec, as(withID(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.NewString()), newUser(domain.RoleBuyer)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Only admins can do this", decode(t, rec)["error"])
}

func TestReviewHandler_ListByProduct_UnknownProduct(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.store.Products.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	rec := httptest.NewRecorder()
	f.reviews.ListByProduct(rec, withID(httptest.NewRequest(http.MethodGet, "/", nil), id.String()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryHandler_CreateAndGet(t *testing.T) {
	f := newFixture()
	f.store.Categories.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := jsonRequest(t, http.MethodPost, "/categories", CategoryRequest{Name: "Electronics"})
	rec := httptest.NewRecorder()
	f.categories.Create(rec, as(req, newUser(domain.RoleAdmin)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	id := uuid.New()
	f.store.Categories.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)
	rec = httptest.NewRecorder()
	f.categories.GetByID(rec, withID(httptest.NewRequest(http.MethodGet, "/", nil), id.String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decode(t, rec)["error"])
}

func TestUserHandler_RegisterAndLogin(t *testing.T) {
	f := newFixture()

	f.store.Users.On("Create", mock.Anything, mock.Anything).Return(nil)
	rec := httptest.NewRecorder()
	f.users.Register(rec, jsonRequest(t, http.MethodPost, "/users", map[string]string{
		"email": "jane@example.com", "password": "password123", "role": "seller",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "seller", data["role"])
	assert.NotContains(t, data, "hashed_password")

	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	f.store.Users.On("GetByEmail", mock.Anything, "jane@example.com").Return(&domain.User{
		ID: uuid.New(), Email: "jane@example.com", HashedPassword: hash, Role: domain.RoleSeller, Status: domain.StatusActive,
	}, nil)

	form := url.Values{"username": {"jane@example.com"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/users/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	f.users.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	form.Set("password", "wrong-password")
	req = httptest.NewRequest(http.MethodPost, "/users/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	f.users.Login(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestUserHandler_Register_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.store.Users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyExists)

	rec := httptest.NewRecorder()
	f.users.Register(rec, jsonRequest(t, http.MethodPost, "/users", map[string]string{
		"email": "jane@example.com", "password": "password123",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", decode(t, rec)["error"])
}

func TestUserHandler_Refresh_Missing(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.users.Refresh(rec, httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
