// Package http assembles the gin route tree and the HTTP server of the
// TCKDB backend.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/prometheus"
	"github.com/tckdb/tckdb-go/internal/interfaces/http/handlers"
	"github.com/tckdb/tckdb-go/internal/interfaces/http/middleware"
	"github.com/tckdb/tckdb-go/pkg/errors"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	SpeciesHandler *handlers.SpeciesHandler
	ToolsHandler   *handlers.ToolsHandler
	HealthHandler  *handlers.HealthHandler

	// Middleware
	CORS        *middleware.CORSConfig
	RateLimiter middleware.RateLimiter
	RateLimit   *middleware.RateLimitConfig
	Logging     *middleware.LoggingConfig

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string

	// MaxBodySize caps request body size in bytes; 0 disables the cap.
	MaxBodySize int64
}

// NewRouter constructs the complete route tree: global middleware, public
// probe endpoints, the metrics endpoint, and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	if cfg.MaxBodySize > 0 {
		limit := cfg.MaxBodySize
		r.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
			c.Next()
		})
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}
	r.Use(middleware.RequestLogging(logger, logCfg))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		rlCfg := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit != nil {
			rlCfg = *cfg.RateLimit
		}
		r.Use(middleware.RateLimit(cfg.RateLimiter, rlCfg))
	}

	// Probes stay at the root, outside the versioned API.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.SpeciesHandler != nil {
		cfg.SpeciesHandler.RegisterRoutes(api)
	}
	if cfg.ToolsHandler != nil {
		cfg.ToolsHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    string(errors.ErrCodeNotFound),
			"message": "route not found",
		})
	})

	return r
}
