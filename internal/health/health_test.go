package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(c *Checker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	c.RegisterRoutes(router)
	return router
}

func TestHealthz(t *testing.T) {
	c := NewChecker("1.2.3")
	router := newTestRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadyz_AllHealthy(t *testing.T) {
	c := NewChecker("test")
	c.RegisterCheck("store", func(context.Context) error { return nil })
	router := newTestRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["store"].Status)
}

func TestReadyz_FailingCheck(t *testing.T) {
	c := NewChecker("test")
	c.RegisterCheck("store", func(context.Context) error { return errors.New("connection refused") })
	c.RegisterCheck("other", func(context.Context) error { return nil })
	router := newTestRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, StatusUnhealthy, resp.Checks["store"].Status)
	assert.Contains(t, resp.Checks["store"].Error, "connection refused")
	assert.Equal(t, StatusHealthy, resp.Checks["other"].Status)
}

func TestReadyz_NoChecks(t *testing.T) {
	c := NewChecker("test")
	router := newTestRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
