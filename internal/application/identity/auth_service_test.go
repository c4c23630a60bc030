package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/identity"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/infrastructure/auth"
	"github.com/cartly/backend/internal/infrastructure/config"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenBlacklist is a mock implementation of auth.TokenBlacklist
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	args := m.Called(ctx, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, tokenIssuedAt)
	return args.Bool(0), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough-123",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "cartly-test",
		MaxRefreshCount:        10,
	})
}

func newTestAuthService(userRepo *MockUserRepository, blacklist auth.TokenBlacklist) *AuthService {
	return NewAuthService(userRepo, newTestJWTService(), blacklist, DefaultAuthServiceConfig(), zap.NewNop())
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Jamie Doe", "jamie@example.com", "s3curePassw0rd")
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an account and returns tokens", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		userRepo.On("ExistsByEmail", ctx, "jamie@example.com").Return(false, nil)
		userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := svc.Register(ctx, RegisterInput{
			Name:     "Jamie Doe",
			Email:    "Jamie@Example.com",
			Password: "s3curePassw0rd",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "jamie@example.com", result.User.Email)
		assert.Equal(t, "buyer", result.User.Role)
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		userRepo.On("ExistsByEmail", ctx, "jamie@example.com").Return(true, nil)

		_, err := svc.Register(ctx, RegisterInput{
			Name:     "Jamie Doe",
			Email:    "jamie@example.com",
			Password: "s3curePassw0rd",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticates with correct credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "jamie@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		result, err := svc.Login(ctx, LoginInput{
			Email:    "jamie@example.com",
			Password: "s3curePassw0rd",
			IP:       "203.0.113.7",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, "203.0.113.7", user.LastLoginIP)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "jamie@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		_, err := svc.Login(ctx, LoginInput{
			Email:    "jamie@example.com",
			Password: "wrong-password",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.Equal(t, 1, user.FailedAttempts)
	})

	t.Run("does not reveal whether the account exists", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		userRepo.On("FindByEmail", ctx, "unknown@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{
			Email:    "unknown@example.com",
			Password: "whatever",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("locks the account after repeated failures", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "jamie@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		for i := 0; i < 4; i++ {
			_, err := svc.Login(ctx, LoginInput{Email: "jamie@example.com", Password: "wrong"})
			require.Error(t, err)
		}

		_, err := svc.Login(ctx, LoginInput{Email: "jamie@example.com", Password: "wrong"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)

		// Even the right password is rejected while locked
		_, err = svc.Login(ctx, LoginInput{Email: "jamie@example.com", Password: "s3curePassw0rd"})
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges a valid refresh token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "jamie@example.com").Return(user, nil)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		login, err := svc.Login(ctx, LoginInput{Email: "jamie@example.com", Password: "s3curePassw0rd"})
		require.NoError(t, err)

		result, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEqual(t, login.AccessToken, result.AccessToken)
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		svc := newTestAuthService(new(MockUserRepository), nil)

		_, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-jwt"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})

	t.Run("rejects a refresh for a deleted user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "jamie@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)
		userRepo.On("FindByID", ctx, user.ID).Return(nil, shared.ErrNotFound)

		login, err := svc.Login(ctx, LoginInput{Email: "jamie@example.com", Password: "s3curePassw0rd"})
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USER_NOT_FOUND", domainErr.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("blacklists the access token JTI", func(t *testing.T) {
		blacklist := new(MockTokenBlacklist)
		svc := newTestAuthService(new(MockUserRepository), blacklist)

		blacklist.On("AddToBlacklist", ctx, "jti-123", mock.AnythingOfType("time.Duration")).Return(nil)

		err := svc.Logout(ctx, LogoutInput{
			UserID:    uuid.New(),
			TokenJTI:  "jti-123",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		})
		require.NoError(t, err)
		blacklist.AssertExpectations(t)
	})

	t.Run("skips blacklisting for an already expired token", func(t *testing.T) {
		blacklist := new(MockTokenBlacklist)
		svc := newTestAuthService(new(MockUserRepository), blacklist)

		err := svc.Logout(ctx, LogoutInput{
			UserID:    uuid.New(),
			TokenJTI:  "jti-123",
			ExpiresAt: time.Now().Add(-time.Minute),
		})
		require.NoError(t, err)
		blacklist.AssertNotCalled(t, "AddToBlacklist", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password with the correct old one", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "s3curePassw0rd",
			NewPassword: "an0therSecret!",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("an0therSecret!"))
	})

	t.Run("rejects a wrong old password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestAuthService(userRepo, nil)

		user := newTestUser(t)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "wrong",
			NewPassword: "an0therSecret!",
		})
		require.Error(t, err)
	})
}
