// File: internal/user/token.go
package user

import (
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/config"
	"marketplace_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
)

// jwtTokenService implements shared.TokenService with HMAC-signed JWTs.
type jwtTokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a shared.TokenService backed by the configured JWT secret.
func NewTokenService(cfg *config.Config) shared.TokenService {
	return &jwtTokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.JWTAccessTokenTTL,
		refreshTTL: cfg.JWTRefreshTokenTTL,
	}
}

func (s *jwtTokenService) generate(userData shared.UserDataForToken, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &shared.Claims{
		UserID: userData.GetID(),
		Email:  userData.GetEmail(),
		Role:   userData.GetRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userData.GetID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *jwtTokenService) GenerateAccessToken(userData shared.UserDataForToken) (string, time.Time, error) {
	return s.generate(userData, s.accessTTL)
}

func (s *jwtTokenService) GenerateRefreshToken(userData shared.UserDataForToken) (string, time.Time, error) {
	return s.generate(userData, s.refreshTTL)
}

func (s *jwtTokenService) parse(tokenString string) (*shared.Claims, error) {
	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *jwtTokenService) ValidateToken(tokenString string) (*shared.Claims, error) {
	return s.parse(tokenString)
}

func (s *jwtTokenService) ParseRefreshToken(refreshTokenString string) (*shared.Claims, error) {
	return s.parse(refreshTokenString)
}
