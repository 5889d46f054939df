package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
)

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	jm, err := NewJWTManager(config.AuthConfig{JWTSecret: "test-secret", Issuer: "agriai", TokenTTL: time.Hour})
	require.NoError(t, err)
	return jm
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(config.AuthConfig{Issuer: "agriai"})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	jm := newManager(t)
	ctx := context.Background()

	token, err := jm.GenerateToken(ctx, "farmer-1", "Ravi", 0)
	require.NoError(t, err)

	claims, err := jm.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "farmer-1", claims.UserID)
	assert.Equal(t, "Ravi", claims.Name)
	assert.Equal(t, "agriai", claims.Issuer)
}

func TestValidateTokenRejects(t *testing.T) {
	jm := newManager(t)
	ctx := context.Background()

	other, err := NewJWTManager(config.AuthConfig{JWTSecret: "other", Issuer: "agriai", TokenTTL: time.Hour})
	require.NoError(t, err)
	foreign, err := other.GenerateToken(ctx, "farmer-1", "", 0)
	require.NoError(t, err)

	// ttl <= 0 берёт срок из конфигурации
	stale := &JWTManager{signingKey: jm.signingKey, issuer: jm.issuer, ttl: -time.Minute, tracer: jm.tracer}
	expired, err := stale.GenerateToken(ctx, "farmer-1", "", 0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "foreign signature", token: foreign},
		{name: "expired", token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jm.ValidateToken(ctx, tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jm := newManager(t)

	token, err := jm.GenerateToken(context.Background(), "farmer-7", "", 0)
	require.NoError(t, err)

	router := gin.New()
	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFrom(c)+"|"+UserIDFromContext(c.Request.Context()))
	}
	router.GET("/optional", OptionalAuth(jm), whoami)
	router.GET("/required", RequireAuth(jm), whoami)

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "optional anonymous", path: "/optional", wantCode: http.StatusOK, wantBody: "|"},
		{name: "optional bad token", path: "/optional", header: "Bearer nope", wantCode: http.StatusOK, wantBody: "|"},
		{name: "optional user", path: "/optional", header: "Bearer " + token, wantCode: http.StatusOK, wantBody: "farmer-7|farmer-7"},
		{name: "required anonymous", path: "/required", wantCode: http.StatusUnauthorized},
		{name: "required user", path: "/required", header: "bearer " + token, wantCode: http.StatusOK, wantBody: "farmer-7|farmer-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
