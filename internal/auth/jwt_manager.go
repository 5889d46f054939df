// Package auth — проверка JWT-сессий фермера.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
)

var tracer = otel.Tracer("jwt-manager")

// ErrInvalidToken — токен не прошёл проверку.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager выпускает и проверяет HS256-токены.
type JWTManager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	tracer     trace.Tracer
}

// Claims — содержимое токена сессии.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTManager создаёт менеджер из конфигурации.
func NewJWTManager(cfg config.AuthConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	return &JWTManager{
		signingKey: []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		ttl:        cfg.TokenTTL,
		tracer:     tracer,
	}, nil
}

// GenerateToken выпускает токен для userID. ttl <= 0 — срок из конфигурации.
func (jm *JWTManager) GenerateToken(ctx context.Context, userID, name string, ttl time.Duration) (string, error) {
	_, span := jm.tracer.Start(ctx, "jwt.generate_token")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID))

	if userID == "" {
		return "", fmt.Errorf("user id cannot be empty")
	}
	if ttl <= 0 {
		ttl = jm.ttl
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    jm.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jm.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	span.SetAttributes(attribute.String("jwt.expires_at", claims.ExpiresAt.String()))
	return tokenString, nil
}

// ValidateToken проверяет подпись, срок и издателя.
func (jm *JWTManager) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	_, span := jm.tracer.Start(ctx, "jwt.validate_token")
	defer span.End()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return jm.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jm.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}

	span.SetAttributes(attribute.String("user.id", claims.UserID))
	return claims, nil
}
