package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Claims are the bearer token contents. Role is trusted until the token expires.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() Actor {
	return Actor{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

type AuthService interface {
	// ObtainToken exchanges a confirmation code for a signed access token.
	ObtainToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo       repository.UserRepository
	jwtSecret      string
	accessTokenTTL time.Duration
	singleUse      bool

	now func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo:       userRepo,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		singleUse:      cfg.ConfirmationSingleUse,
		now:            time.Now,
	}
}

func (s *authService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.TokenExchanges.WithLabelValues("unknown_user").Inc()
			return "", fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return "", err
	}

	if err := auth.VerifyCode(user.ConfirmationHash, code); err != nil {
		metrics.TokenExchanges.WithLabelValues("invalid_code").Inc()
		return "", ErrInvalidConfirmationCode
	}

	if s.singleUse {
		// compare-and-swap: of two concurrent exchanges with the same code only one wins
		consumed, err := s.userRepo.ConsumeConfirmationHash(ctx, user.ID, user.ConfirmationHash)
		if err != nil {
			return "", fmt.Errorf("consume confirmation code: %w", err)
		}
		if !consumed {
			metrics.TokenExchanges.WithLabelValues("invalid_code").Inc()
			return "", ErrInvalidConfirmationCode
		}
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", err
	}
	metrics.TokenExchanges.WithLabelValues("issued").Inc()
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return claims, nil
}
