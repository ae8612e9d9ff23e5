package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
	"foodgram/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func validRegistration() services.RegisterInput {
	return services.RegisterInput{
		Email:     "test@example.com",
		Username:  "testuser",
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	}
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, repositories.NewMemoryTokenDenylist(), testJWTSecret, time.Hour)
	ctx := context.Background()
	in := validRegistration()

	mockRepo.On("GetByEmail", ctx, in.Email).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByUsername", ctx, in.Username).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == in.Username &&
			u.Role == models.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) == nil
	})).Return(nil).Once()

	user, err := authService.Register(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", ctx, in.Email).Return(&models.User{ID: 1}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.ErrorIs(t, err, services.ErrConflict)
	var fieldErrs services.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs.Fields(), "email")
	mockRepo.AssertExpectations(t)

	// Test username already taken
	mockRepo.On("GetByEmail", ctx, in.Email).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByUsername", ctx, in.Username).Return(&models.User{ID: 1}, nil).Once()
	_, err = authService.Register(ctx, in)
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs.Fields(), "username")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, repositories.NewMemoryTokenDenylist(), testJWTSecret, time.Hour)

	cases := map[string]func(*services.RegisterInput){
		"email":    func(in *services.RegisterInput) { in.Email = "not-an-email" },
		"username": func(in *services.RegisterInput) { in.Username = "bad name!" },
		"password": func(in *services.RegisterInput) { in.Password = "short" },
	}
	for field, mutate := range cases {
		in := validRegistration()
		mutate(&in)
		_, err := authService.Register(context.Background(), in)
		var fieldErrs services.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs, field)
		assert.Contains(t, fieldErrs.Fields(), field)
	}

	in := validRegistration()
	in.Username = "Me"
	_, err := authService.Register(context.Background(), in)
	var fieldErrs services.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, []string{`The username "me" is reserved.`}, fieldErrs.Fields()["username"])
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, repositories.NewMemoryTokenDenylist(), testJWTSecret, time.Hour)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       7,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	token, err := authService.Login(ctx, services.LoginInput{Email: user.Email, Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.EqualValues(t, 7, claims["user_id"])
	assert.NotEmpty(t, claims["jti"])

	mockRepo.On("GetByID", ctx, uint(7)).Return(user, nil).Once()
	authed, tokenClaims, err := authService.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, authed)

	// Logout revokes the token
	require.NoError(t, authService.Logout(ctx, tokenClaims))
	_, _, err = authService.Authenticate(ctx, token)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, err = authService.Login(ctx, services.LoginInput{Email: user.Email, Password: "wrongpassword"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, err = authService.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, repositories.NewMemoryTokenDenylist(), testJWTSecret, time.Hour)
	ctx := context.Background()

	_, err := authService.ValidateToken(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(ctx, expiredTokenString)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Test wrong secret
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
	foreignString, _ := foreign.SignedString([]byte("other secret"))
	_, err = authService.ValidateToken(ctx, foreignString)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_ChangePassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, repositories.NewMemoryTokenDenylist(), testJWTSecret, time.Hour)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: 3, Password: string(hashedPassword)}

	err := authService.ChangePassword(ctx, user, services.SetPasswordInput{CurrentPassword: "nope", NewPassword: "newpassword1"})
	var fieldErrs services.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs.Fields(), "current_password")

	err = authService.ChangePassword(ctx, user, services.SetPasswordInput{CurrentPassword: "password123", NewPassword: "password123"})
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs.Fields(), "new_password")

	mockRepo.On("UpdatePassword", ctx, uint(3), mock.AnythingOfType("string")).Return(nil).Once()
	require.NoError(t, authService.ChangePassword(ctx, user, services.SetPasswordInput{CurrentPassword: "password123", NewPassword: "newpassword1"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("newpassword1")))
	mockRepo.AssertExpectations(t)

	mockRepo.On("UpdatePassword", ctx, uint(3), mock.AnythingOfType("string")).Return(errors.New("db down")).Once()
	assert.Error(t, authService.ChangePassword(ctx, user, services.SetPasswordInput{CurrentPassword: "newpassword1", NewPassword: "another-pass"}))
}
