package user

import (
	"context"
	"testing"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock type for user.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockTokenService is a mock type for shared.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(userData shared.UserDataForToken) (string, time.Time, error) {
	args := m.Called(userData)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(userData shared.UserDataForToken) (string, time.Time, error) {
	args := m.Called(userData)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*shared.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func (m *MockTokenService) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	args := m.Called(refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

func setupUserService(t *testing.T) (*ServiceImplementation, *MockUserRepository, *MockTokenService) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := NewService(repo, tokens, zap.NewNop())
	return svc, repo, tokens
}

func expectTokens(tokens *MockTokenService) {
	expiry := time.Now().Add(time.Hour)
	tokens.On("GenerateAccessToken", mock.Anything).Return("access-token", expiry, nil)
	tokens.On("GenerateRefreshToken", mock.Anything).Return("refresh-token", expiry.Add(720*time.Hour), nil)
}

// --- Test Cases ---

func TestService_Register_Success(t *testing.T) {
	svc, repo, tokens := setupUserService(t)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "new@example.com").Return(nil, common.ErrNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)
	expectTokens(tokens)

	resp, err := svc.Register(ctx, RegisterRequest{
		Email:       "New@Example.com",
		Password:    "correct horse battery staple",
		DisplayName: "  Sam  ",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, "Sam", resp.User.DisplayName)
	assert.Equal(t, "access-token", resp.Tokens.AccessToken)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)

	// The repository never sees a plaintext password.
	created := repo.Calls[1].Arguments.Get(1).(*User)
	assert.NotEqual(t, "correct horse battery staple", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse battery staple")))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, repo, _ := setupUserService(t)
	ctx := context.Background()

	existing := &User{Email: "taken@example.com"}
	existing.ID = uuid.New()
	repo.On("FindByEmail", ctx, "taken@example.com").Return(existing, nil)

	resp, err := svc.Register(ctx, RegisterRequest{Email: "taken@example.com", Password: "irrelevant1234"})

	assert.Nil(t, resp)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Login_Success(t *testing.T) {
	svc, repo, tokens := setupUserService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)
	u := &User{Email: "sam@example.com", PasswordHash: string(hash), Role: common.RoleUser}
	u.ID = uuid.New()

	repo.On("FindByEmail", ctx, "sam@example.com").Return(u, nil)
	repo.On("Update", ctx, u).Return(nil)
	expectTokens(tokens)

	resp, err := svc.Login(ctx, LoginRequest{Email: "sam@example.com", Password: "hunter2hunter2"})

	assert.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.NotNil(t, u.LastLoginAt)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, repo, _ := setupUserService(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("the-right-one"), bcrypt.MinCost)
	u := &User{Email: "sam@example.com", PasswordHash: string(hash)}
	u.ID = uuid.New()
	repo.On("FindByEmail", ctx, "sam@example.com").Return(u, nil)

	resp, err := svc.Login(ctx, LoginRequest{Email: "sam@example.com", Password: "the-wrong-one"})

	assert.Nil(t, resp)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc, repo, _ := setupUserService(t)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, common.ErrNotFound)

	resp, err := svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever1234"})

	// The response does not reveal whether the account exists.
	assert.Nil(t, resp)
	apiErr, ok := common.IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, common.ErrUnauthorized.Code, apiErr.Code)
}
