package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chirp/internal/models"
	"chirp/internal/services"
	"chirp/pkg/password"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestAuthService(t *testing.T, repo *MockUserRepository) *services.AuthService {
	t.Helper()
	svc, err := services.NewAuthService(repo, testJWTSecret, "HS256", time.Hour, zap.NewNop())
	assert.NoError(t, err)
	return svc
}

func TestNewAuthService_RejectsNonHMACAlgorithm(t *testing.T) {
	_, err := services.NewAuthService(new(MockUserRepository), testJWTSecret, "RS256", time.Hour, zap.NewNop())
	assert.Error(t, err)

	_, err = services.NewAuthService(new(MockUserRepository), testJWTSecret, "NOPE", time.Hour, zap.NewNop())
	assert.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockRepo)

	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 1
	}).Return(nil).Once()

	user, err := authService.Register("alice", "password1")
	assert.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	// Stored credential is a verifiable hash, never the plaintext.
	assert.NotEqual(t, "password1", user.PasswordHash)
	assert.True(t, password.Verify("password1", user.PasswordHash))
	mockRepo.AssertExpectations(t)

	// Duplicate username surfaces the repository's conflict unchanged.
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("username %q: %w", "alice", models.ErrConflict)).Once()
	_, err = authService.Register("alice", "password1")
	assert.ErrorIs(t, err, models.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockRepo)

	hash, _ := password.Hash("password1")
	user := &models.User{ID: 1, Username: "alice", PasswordHash: hash}

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	got, err := authService.Authenticate("alice", "password1")
	assert.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	_, err = authService.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	mockRepo.On("GetByUsername", "nobody").
		Return(nil, fmt.Errorf("user %q: %w", "nobody", models.ErrNotFound)).Once()
	_, err = authService.Authenticate("nobody", "password1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockRepo)

	hash, _ := password.Hash("password1")
	user := &models.User{ID: 1, Username: "alice", PasswordHash: hash}

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	token, err := authService.Login("alice", "password1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// The token carries the username as subject and a jti.
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, "alice", claims["sub"])
	assert.NotEmpty(t, claims["jti"])

	mockRepo.AssertExpectations(t)
}

func TestAuthService_IssueAndVerifyToken(t *testing.T) {
	authService := newTestAuthService(t, new(MockUserRepository))

	token, err := authService.IssueToken("alice", time.Hour)
	assert.NoError(t, err)

	subject, err := authService.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestAuthService_IssueTokenDefaultTTL(t *testing.T) {
	authService := newTestAuthService(t, new(MockUserRepository))

	token, err := authService.IssueToken("alice", 0)
	assert.NoError(t, err)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)

	exp := time.Unix(int64(claims["exp"].(float64)), 0)
	lower := time.Now().Add(services.DefaultTokenTTL - time.Minute)
	upper := time.Now().Add(services.DefaultTokenTTL + time.Minute)
	assert.True(t, exp.After(lower) && exp.Before(upper), "expected default 15m expiry, got %v", exp)
}

func TestAuthService_VerifyExpiredToken(t *testing.T) {
	authService := newTestAuthService(t, new(MockUserRepository))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, _ := expired.SignedString([]byte(testJWTSecret))

	_, err := authService.VerifyToken(tokenString)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthService_VerifyTamperedToken(t *testing.T) {
	authService := newTestAuthService(t, new(MockUserRepository))

	token, err := authService.IssueToken("alice", time.Hour)
	assert.NoError(t, err)

	// Flip one byte of the signature.
	parts := strings.Split(token, ".")
	assert.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = authService.VerifyToken(tampered)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthService_VerifyAlgorithmMismatch(t *testing.T) {
	authService := newTestAuthService(t, new(MockUserRepository))

	// Signed with the right secret but the wrong HMAC variant.
	other := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, _ := other.SignedString([]byte(testJWTSecret))

	_, err := authService.VerifyToken(tokenString)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthService_VerifyMissingSubject(t *testing.T) {
	authService := newTestAuthService(t, new(MockUserRepository))

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, _ := noSub.SignedString([]byte(testJWTSecret))

	_, err := authService.VerifyToken(tokenString)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestAuthService_Resolve(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockRepo)

	user := &models.User{ID: 1, Username: "alice"}
	token, err := authService.IssueToken("alice", time.Hour)
	assert.NoError(t, err)

	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	got, err := authService.Resolve(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	mockRepo.AssertExpectations(t)

	// Subject no longer resolvable, e.g. user deleted after issuance.
	mockRepo.On("GetByUsername", "alice").
		Return(nil, fmt.Errorf("user %q: %w", "alice", models.ErrNotFound)).Once()
	_, err = authService.Resolve(token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ResolveInvalidToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockRepo)

	_, err := authService.Resolve("not.a.token")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	// The store is never consulted for an invalid token.
	mockRepo.AssertNotCalled(t, "GetByUsername", mock.Anything)
}
