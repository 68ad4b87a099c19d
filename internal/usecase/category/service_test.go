package category

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/domain/mocks"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
)

func admin() *domain.User {
	return &domain.User{ID: uuid.New(), Role: domain.RoleAdmin, Status: domain.StatusActive}
}

func TestService_Create_Success(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	parentID := uuid.New()

	category := &domain.Category{Name: "Laptops", ParentID: &parentID}

	store.Categories.On("GetByID", mock.Anything, parentID).Return(&domain.Category{ID: parentID}, nil)
	store.Categories.On("Create", mock.Anything, category).Return(nil)

	err := service.Create(context.Background(), admin(), category)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, category.Status)
	store.AssertExpectations(t)
}

func TestService_Create_RequiresAdmin(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	seller := &domain.User{ID: uuid.New(), Role: domain.RoleSeller, Status: domain.StatusActive}

	err := service.Create(context.Background(), seller, &domain.Category{Name: "Laptops"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "Only admins can do this", err.Error())
}

func TestService_Create_ShortName(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))

	err := service.Create(context.Background(), admin(), &domain.Category{Name: "TV"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.TxCount)
}

func TestService_Create_MissingParent(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	parentID := uuid.New()

	store.Categories.On("GetByID", mock.Anything, parentID).Return(nil, domain.ErrNotFound)

	err := service.Create(context.Background(), admin(), &domain.Category{Name: "Laptops", ParentID: &parentID})

	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	store.Categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Update_SelfParent(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	id := uuid.New()

	store.Categories.On("GetByID", mock.Anything, id).Return(&domain.Category{ID: id, Name: "Laptops"}, nil)

	_, err := service.Update(context.Background(), admin(), id, &domain.Category{Name: "Laptops", ParentID: &id})

	assert.ErrorIs(t, err, domain.ErrParentUnavailable)
}

func TestService_Update_Success(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	id := uuid.New()
	existing := &domain.Category{ID: id, Name: "Laptops", Status: domain.StatusActive}

	store.Categories.On("GetByID", mock.Anything, id).Return(existing, nil)
	store.Categories.On("Update", mock.Anything, existing).Return(nil)

	updated, err := service.Update(context.Background(), admin(), id, &domain.Category{Name: "Notebooks"})

	require.NoError(t, err)
	assert.Equal(t, "Notebooks", updated.Name)
	assert.Nil(t, updated.ParentID)
}

func TestService_Delete_NotFound(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	id := uuid.New()

	store.Categories.On("Delete", mock.Anything, id).Return(domain.ErrNotFound)

	err := service.Delete(context.Background(), admin(), id)

	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestService_GetByID(t *testing.T) {
	store := mocks.NewStore()
	service := NewService(store, logger.New("test"))
	id := uuid.New()

	store.Categories.On("GetByID", mock.Anything, id).Return(&domain.Category{ID: id, Name: "Laptops"}, nil).Once()
	store.Categories.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound).Once()

	category, err := service.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Laptops", category.Name)

	_, err = service.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
