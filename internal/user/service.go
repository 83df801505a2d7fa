// File: internal/user/service.go
package user

import (
	"context"
	"strings"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthResponse bundles the user with issued tokens after register/login.
type AuthResponse struct {
	User   UserResponse         `json:"user"`
	Tokens shared.TokenResponse `json:"tokens"`
}

// Service defines the interface for user-related business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// ServiceImplementation implements the user Service interface.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	logger       *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, tokenService shared.TokenService, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Register creates a new account and issues tokens for it.
func (s *ServiceImplementation) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, common.ErrConflict.WithDetails("A user with this email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process registration.")
	}

	newUser := &User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         common.RoleUser,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		s.logger.Error("Failed to create user in repository", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered", zap.String("userID", newUser.ID.String()))
	return s.issueTokens(newUser)
}

// Login verifies credentials and issues tokens.
func (s *ServiceImplementation) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.String("userID", u.ID.String()))
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	now := time.Now()
	u.LastLoginAt = &now
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Warn("Failed to record last login time", zap.Error(err), zap.String("userID", u.ID.String()))
	}

	return s.issueTokens(u)
}

// GetUserByID retrieves a user by ID.
func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) issueTokens(u *User) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(u)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err), zap.String("userID", u.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not issue tokens.")
	}
	refreshToken, _, err := s.tokenService.GenerateRefreshToken(u)
	if err != nil {
		s.logger.Error("Failed to generate refresh token", zap.Error(err), zap.String("userID", u.ID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not issue tokens.")
	}

	return &AuthResponse{
		User: ToUserResponse(u),
		Tokens: shared.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    expiresAt,
			TokenType:    "Bearer",
		},
	}, nil
}
