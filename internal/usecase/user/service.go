package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/auth"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/pkg/validator"
)

const tokenTypeBearer = "bearer"

// Registration is the sign-up payload. Admins cannot self-register.
type Registration struct {
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=buyer seller"`
}

// Tokens is the OAuth2-style token response
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// Service handles accounts and credentials
type Service struct {
	store    domain.Store
	jwt      *auth.JWTManager
	hashCost int
	logger   *logger.Logger
}

// NewService creates a new user service
func NewService(store domain.Store, jwt *auth.JWTManager, hashCost int, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		jwt:      jwt,
		hashCost: hashCost,
		logger:   log,
	}
}

// Register creates an active account
func (s *Service) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if reg.Role == "" {
		reg.Role = domain.RoleBuyer
	}

	if err := validator.Struct(reg); err != nil {
		s.logger.Debugf("Registration validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	hash, err := auth.HashPassword(reg.Password, s.hashCost)
	if err != nil {
		s.logger.Error("Failed to hash password", err)
		return nil, err
	}

	user := &domain.User{
		Email:          reg.Email,
		HashedPassword: hash,
		Role:           reg.Role,
		Status:         domain.StatusActive,
	}

	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrEmailTaken
		}
		s.logger.Failure("Failed to create user", err)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered successfully")

	return user, nil
}

// Login exchanges credentials for an access and a refresh token
func (s *Service) Login(ctx context.Context, email, password string) (*Tokens, error) {
	user, err := s.store.Repos().Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrBadCredentials
		}
		s.logger.Failure("Failed to look up user", err)
		return nil, err
	}

	if !user.Status.IsActive() || !auth.CheckPassword(user.HashedPassword, password) {
		return nil, domain.ErrBadCredentials
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
	}, nil
}

// Refresh issues a new access token for a valid refresh token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debugf("Refresh token rejected: %v", err)
		return nil, domain.ErrInvalidToken
	}

	user, err := s.store.Repos().Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrInvalidToken)
	}

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &Tokens{AccessToken: access, TokenType: tokenTypeBearer}, nil
}

// Authenticate resolves an access token to the active user it was issued to
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		s.logger.Debugf("Access token rejected: %v", err)
		return nil, domain.ErrInvalidToken
	}

	user, err := s.store.Repos().Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.WhenNotFound(err, domain.ErrInvalidToken)
	}

	return user, nil
}
