package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the Gin engine with routes and middlewares.
func NewRouter(handler *LoanHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	loans := r.Group("/loans")
	{
		loans.GET("", handler.List)
		loans.POST("", handler.Create)
		loans.GET("/:id", handler.Get)
		loans.PUT("/:id", handler.Update)
		loans.PATCH("/:id/title", handler.Rename)
		loans.DELETE("/:id", handler.Delete)
		loans.GET("/:id/schedule", handler.Schedule)
		loans.GET("/:id/schedule/:period", handler.ScheduleEntry)
	}

	r.POST("/quote", handler.Quote)
	r.GET("/portfolio", handler.Portfolio)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// zapLoggerMiddleware logs each request against its route template
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("loan_id", id))
		}
		if period := c.Param("period"); period != "" {
			fields = append(fields, zap.String("period", period))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
