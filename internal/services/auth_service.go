package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chirp/internal/models"
	"chirp/internal/repositories"
	"chirp/pkg/password"
)

// DefaultTokenTTL is used when IssueToken is called without an explicit ttl.
const DefaultTokenTTL = 15 * time.Minute

// AuthService handles registration, login, token issuance/verification, and
// per-request identity resolution. The signing key and method are fixed at
// construction, so the service is safe for concurrent use.
type AuthService struct {
	userRepo repositories.UserRepository
	secret   []byte
	method   jwt.SigningMethod
	tokenTTL time.Duration
	log      *zap.Logger
}

// NewAuthService creates a new AuthService. The algorithm must name an
// HMAC signing method (HS256, HS384, or HS512).
func NewAuthService(userRepo repositories.UserRepository, secret, algorithm string, tokenTTL time.Duration, log *zap.Logger) (*AuthService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(secret),
		method:   method,
		tokenTTL: tokenTTL,
		log:      log,
	}, nil
}

// Register hashes the password and creates the user. A duplicate username
// surfaces as ErrConflict from the repository.
func (s *AuthService) Register(username, plaintext string) (*models.User, error) {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate looks up the user and verifies the password. The user must
// exist (ErrNotFound) and the password must match (ErrInvalidCredentials).
func (s *AuthService) Authenticate(username, plaintext string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, fmt.Errorf("user %q: %w", username, models.ErrInvalidCredentials)
	}
	return user, nil
}

// Login authenticates the user and issues a bearer token with the configured ttl.
func (s *AuthService) Login(username, plaintext string) (string, error) {
	user, err := s.Authenticate(username, plaintext)
	if err != nil {
		return "", err
	}
	token, err := s.IssueToken(user.Username, s.tokenTTL)
	if err != nil {
		return "", err
	}
	s.log.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return token, nil
}

// IssueToken produces a signed token carrying the subject and an expiry of
// now + ttl. A non-positive ttl falls back to DefaultTokenTTL.
func (s *AuthService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	token := jwt.NewWithClaims(s.method, jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"jti": uuid.New().String(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates the token's signature, algorithm, and expiry, and
// returns the subject claim. Every failure mode is ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", models.ErrInvalidToken
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("%w: missing subject claim", models.ErrInvalidToken)
	}
	return subject, nil
}

// Resolve recovers the authenticated user behind a bearer token. It verifies
// the token and re-queries the store on every call; a token whose subject no
// longer exists resolves to ErrUnauthenticated, as does any invalid token.
func (s *AuthService) Resolve(tokenString string) (*models.User, error) {
	subject, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}

	user, err := s.userRepo.GetByUsername(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q has no user record", models.ErrUnauthenticated, subject)
	}
	return user, nil
}
