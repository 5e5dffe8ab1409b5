package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
	"github.com/madadhq/invoice-financing/internal/errs"
)

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// LoginResult carries the issued token and the authenticated user summary.
type LoginResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// AuthService authenticates users and issues/verifies bearer tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyToken(token string) (*entity.Principal, error)
}

type authServiceImpl struct {
	userRepo port.UserRepository
	config   AuthConfig
	logger   Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo port.UserRepository, config AuthConfig, logger Logger) AuthService {
	if config.TokenTTL == 0 {
		config.TokenTTL = 7 * 24 * time.Hour
	}
	return &authServiceImpl{
		userRepo: userRepo,
		config:   config,
		logger:   logger,
	}
}

type tokenClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the credentials and issues a signed token. Invalid email
// and invalid password are indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, errs.Validation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to look up user", "error", err, "email", email)
		return nil, errs.Internal(err)
	}
	if user == nil {
		return nil, errs.Forbidden("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.Forbidden("invalid credentials")
	}

	now := time.Now()
	claims := tokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign token", "error", err, "user_id", user.ID)
		return nil, errs.Internal(err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, User: user}, nil
}

// VerifyToken parses and validates a bearer token and returns the
// embedded principal.
func (s *authServiceImpl) VerifyToken(tokenString string) (*entity.Principal, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errs.Forbidden("invalid token")
	}

	return &entity.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
