package gateway

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/auth"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// NewRouter собирает маршруты. jm == nil — сессии не проверяются,
// и все запросы анонимны.
func NewRouter(h *Handler, jm *auth.JWTManager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), structuredLoggingMiddleware())

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	api := router.Group("/api")

	api.GET("/flows", h.ListFlows)
	api.POST("/flows/:name", h.ExecuteFlow)

	api.GET("/crops", h.ListCrops)
	api.GET("/crops/categories", h.ListCropCategories)
	api.GET("/crops/search", h.SearchCrops)
	api.GET("/crops/:key", h.GetCrop)
	api.GET("/schemes", h.ListSchemes)

	api.GET("/languages", h.ListLanguages)
	api.GET("/i18n/:language/:key", h.Translate)

	if jm != nil {
		api.POST("/applications", auth.OptionalAuth(jm), h.SubmitApplication)
		api.GET("/applications", auth.RequireAuth(jm), h.ListApplications)
	} else {
		api.POST("/applications", h.SubmitApplication)
		api.GET("/applications", h.ListApplications)
	}

	return router
}

// structuredLoggingMiddleware пишет по строке лога на запрос.
func structuredLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		keyvals := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := auth.UserIDFrom(c); userID != "" {
			keyvals = append(keyvals, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			keyvals = append(keyvals, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			utils.Error("HTTP request", keyvals...)
		case c.Writer.Status() >= 400:
			utils.Warn("HTTP request", keyvals...)
		default:
			utils.Info("HTTP request", keyvals...)
		}
	}
}
