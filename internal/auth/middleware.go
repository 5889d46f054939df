package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

var middlewareTracer = otel.Tracer("auth-middleware")

type contextKey string

// UserIDKey — ключ user id в gin.Context и context.Context.
const UserIDKey contextKey = "user_id"

// OptionalAuth проверяет bearer-токен, если он есть.
// Без токена или с невалидным токеном запрос идёт дальше анонимно.
func OptionalAuth(jm *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.optional_auth")
		defer span.End()

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			span.SetAttributes(attribute.Bool("auth.authenticated", false))
			c.Next()
			return
		}

		claims, err := jm.ValidateToken(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("auth.authenticated", false))
			utils.Warn("Invalid optional token", "error", err, "path", c.Request.URL.Path)
			c.Next()
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.authenticated", true),
			attribute.String("user.id", claims.UserID),
		)
		setUser(c, claims.UserID)
		c.Next()
	}
}

// RequireAuth отклоняет запрос без валидного токена (401).
func RequireAuth(jm *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.require_auth")
		defer span.End()

		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			span.SetAttributes(attribute.Bool("auth.token_present", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			return
		}

		claims, err := jm.ValidateToken(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("auth.token_valid", false))
			utils.Warn("Invalid token", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.token_valid", true),
			attribute.String("user.id", claims.UserID),
		)
		setUser(c, claims.UserID)
		c.Next()
	}
}

// UserIDFrom возвращает id пользователя текущего запроса или "".
func UserIDFrom(c *gin.Context) string {
	return c.GetString(string(UserIDKey))
}

// WithUserID кладёт id пользователя в context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext возвращает id пользователя из context или "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func setUser(c *gin.Context, userID string) {
	c.Set(string(UserIDKey), userID)
	c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
