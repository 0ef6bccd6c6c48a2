// internal/server/router.go
package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"green-genie/internal/common/logger"
	"green-genie/internal/common/observability"
)

// NewRouter assembles the gin engine: UI at the root, JSON API under
// /api/v1, plus health and metrics endpoints.
func NewRouter(h *Handler, log logger.Logger, obs *observability.Observability) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestLogger(log, obs))

	router.GET("/", h.Index)
	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/sectors", h.Sectors)
		api.POST("/recommendations", h.Recommend)
		api.POST("/prompt/preview", h.PreviewPrompt)
		api.GET("/history", h.History)
		api.GET("/history/search", h.SearchHistory)
		api.POST("/datasets/refresh", h.RefreshDatasets)
		api.POST("/notify/email", h.EmailInteraction)
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func requestLogger(log logger.Logger, obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		if obs != nil {
			obs.RecordRequest(c.Request.Context(), route, strconv.Itoa(c.Writer.Status()))
			obs.RecordRequestDuration(c.Request.Context(), elapsed, route)
		}

		log.Info("request completed", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": elapsed.Milliseconds(),
		})
	}
}
