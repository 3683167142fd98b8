package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/logging"
	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/prometheus"
	"github.com/tckdb/tckdb-go/internal/interfaces/http/handlers"
	"github.com/tckdb/tckdb-go/internal/interfaces/http/middleware"
)

func TestNewRouter_UnknownRoute(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: gin.TestMode})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestNewRouter_ProbesAndMetrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "tckdb_router_test",
	}, logging.NewNopLogger())
	require.NoError(t, err)

	r := NewRouter(RouterConfig{
		Mode:             gin.TestMode,
		HealthHandler:    handlers.NewHealthHandler("test", nil),
		MetricsCollector: collector,
		Metrics:          prometheus.NewAppMetrics(collector),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_AttachesRequestID(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: gin.TestMode})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_RateLimitEnforced(t *testing.T) {
	limiter := middleware.NewTokenBucketLimiter(1, 1, 0)
	defer limiter.Stop()

	r := NewRouter(RouterConfig{
		Mode:        gin.TestMode,
		RateLimiter: limiter,
	})

	// Probe paths are exempt; the API group is not.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/species", nil))
	first := w.Code

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/species", nil))

	assert.NotEqual(t, http.StatusTooManyRequests, first)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
