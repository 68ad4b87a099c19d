package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/domain/mocks"
	"github.com/Pesokrava/catalog_api/internal/pkg/auth"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
)

func newTestService() (*Service, *mocks.Store, *auth.JWTManager) {
	store := mocks.NewStore()
	jwt := auth.NewJWTManager("test-secret", time.Minute, time.Hour)
	return NewService(store, jwt, bcrypt.MinCost, logger.New("test")), store, jwt
}

func storedUser(t *testing.T, role domain.Role, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:             uuid.New(),
		Email:          "jane@example.com",
		HashedPassword: hash,
		Role:           role,
		Status:         domain.StatusActive,
	}
}

func TestService_Register_DefaultsToBuyer(t *testing.T) {
	service, store, _ := newTestService()

	store.Users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" && u.Role == domain.RoleBuyer && u.HashedPassword != "password123"
	})).Return(nil)

	user, err := service.Register(context.Background(), Registration{
		Email:    " Jane@Example.com ",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, user.Role)
	assert.True(t, auth.CheckPassword(user.HashedPassword, "password123"))
	store.AssertExpectations(t)
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
	}{
		{"bad email", Registration{Email: "not-an-email", Password: "password123"}},
		{"short password", Registration{Email: "jane@example.com", Password: "short"}},
		{"admin role", Registration{Email: "jane@example.com", Password: "password123", Role: domain.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, _ := newTestService()

			_, err := service.Register(context.Background(), tt.reg)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			store.Users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Register_EmailTaken(t *testing.T) {
	service, store, _ := newTestService()

	store.Users.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: duplicate key", domain.ErrAlreadyExists))

	_, err := service.Register(context.Background(), Registration{
		Email:    "jane@example.com",
		Password: "password123",
		Role:     domain.RoleSeller,
	})

	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestService_Login_Success(t *testing.T) {
	service, store, jwt := newTestService()
	user := storedUser(t, domain.RoleSeller, "password123")

	store.Users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)

	tokens, err := service.Login(context.Background(), "jane@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "bearer", tokens.TokenType)

	claims, err := jwt.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "seller", claims.Role)

	_, err = jwt.ValidateRefreshToken(tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestService_Login_Rejections(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		service, store, _ := newTestService()
		store.Users.On("GetByEmail", mock.Anything, mock.Anything).Return(storedUser(t, domain.RoleBuyer, "password123"), nil)

		_, err := service.Login(context.Background(), "jane@example.com", "password124")
		assert.ErrorIs(t, err, domain.ErrBadCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		service, store, _ := newTestService()
		store.Users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := service.Login(context.Background(), "nobody@example.com", "password123")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("inactive user", func(t *testing.T) {
		service, store, _ := newTestService()
		user := storedUser(t, domain.RoleBuyer, "password123")
		user.Status = domain.StatusDeleted
		store.Users.On("GetByEmail", mock.Anything, mock.Anything).Return(user, nil)

		_, err := service.Login(context.Background(), "jane@example.com", "password123")
		assert.ErrorIs(t, err, domain.ErrBadCredentials)
	})
}

func TestService_Refresh(t *testing.T) {
	service, store, jwt := newTestService()
	user := storedUser(t, domain.RoleBuyer, "password123")

	refresh, err := jwt.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	store.Users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	tokens, err := service.Refresh(context.Background(), refresh)

	require.NoError(t, err)
	assert.Empty(t, tokens.RefreshToken)
	_, err = jwt.ValidateAccessToken(tokens.AccessToken)
	assert.NoError(t, err)
}

func TestService_Refresh_RejectsAccessToken(t *testing.T) {
	service, _, jwt := newTestService()

	access, err := jwt.GenerateAccessToken(uuid.New(), "jane@example.com", "buyer")
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), access)

	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestService_Authenticate(t *testing.T) {
	service, store, jwt := newTestService()
	user := storedUser(t, domain.RoleAdmin, "password123")

	access, err := jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	store.Users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	store.Users.On("GetByID", mock.Anything, user.ID).Return(nil, domain.ErrNotFound).Once()

	got, err := service.Authenticate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = service.Authenticate(context.Background(), access)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = service.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
