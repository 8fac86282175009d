package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotlinehq/hotline/internal/config"
	"github.com/hotlinehq/hotline/internal/ratelimit"
	"github.com/hotlinehq/hotline/internal/tracker"
)

func testGatewayConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tracker.Credential = "lin_api_test"
	cfg.Tracker.TeamID = "team-1"
	cfg.Tracker.ProjectID = "project-1"
	cfg.RateLimit.Enabled = false
	return cfg
}

func buildTestHandler(t *testing.T, cfg *config.Config, creator IssueCreator, limiter ratelimit.Limiter) http.Handler {
	t.Helper()
	return BuildHandler(Options{
		Config:  cfg,
		Creator: creator,
		Limiter: limiter,
	})
}

func doRequest(h http.Handler, method, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/report", strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:34567"
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPipeline_MethodNotAllowed(t *testing.T) {
	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-1"}}
	h := buildTestHandler(t, testGatewayConfig(), creator, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := doRequest(h, method, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	}
	assert.Equal(t, 0, creator.calls)
}

func TestPipeline_AuthRequired(t *testing.T) {
	token := "s3cret"
	cfg := testGatewayConfig()
	cfg.Auth.Token = &token

	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-1"}}
	h := buildTestHandler(t, cfg, creator, nil)

	body := `{"title": "t", "description": "d"}`

	rec := doRequest(h, http.MethodPost, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing header")

	rec = doRequest(h, http.MethodPost, body, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong token")

	rec = doRequest(h, http.MethodPost, body, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer s3cret")
	})
	assert.Equal(t, http.StatusOK, rec.Code, "correct token")
	assert.Equal(t, 1, creator.calls)
}

func TestPipeline_AuthNotConfigured(t *testing.T) {
	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-1"}}
	h := buildTestHandler(t, testGatewayConfig(), creator, nil)

	rec := doRequest(h, http.MethodPost, `{"title": "t", "description": "d"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPipeline_RateLimited(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.RateLimit.Enabled = true

	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-1"}}
	limiter := ratelimit.NewSlidingWindowLimiter(2, time.Minute)
	h := buildTestHandler(t, cfg, creator, limiter)

	body := `{"title": "t", "description": "d"}`

	for i := 0; i < 2; i++ {
		rec := doRequest(h, http.MethodPost, body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(h, http.MethodPost, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, creator.calls, "denied requests never reach upstream")

	// A different client address has its own budget.
	rec = doRequest(h, http.MethodPost, body, func(r *http.Request) {
		r.RemoteAddr = "192.0.2.99:1234"
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPipeline_MethodCheckBeforeRateLimit(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.RateLimit.Enabled = true

	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-1"}}
	limiter := ratelimit.NewSlidingWindowLimiter(1, time.Minute)
	h := buildTestHandler(t, cfg, creator, limiter)

	// Non-POST requests must not consume the single slot.
	for i := 0; i < 5; i++ {
		rec := doRequest(h, http.MethodGet, "")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	}

	rec := doRequest(h, http.MethodPost, `{"title": "t", "description": "d"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPipeline_BodyTooLarge(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Server.MaxBodyBytes = 128

	creator := &fakeCreator{}
	h := buildTestHandler(t, cfg, creator, nil)

	rec := doRequest(h, http.MethodPost, `{"title": "t", "description": "`+strings.Repeat("x", 1024)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, creator.calls)
}

func TestPipeline_UpstreamFailure(t *testing.T) {
	creator := &fakeCreator{err: &tracker.UpstreamError{Status: 503, Body: "maintenance"}}
	h := buildTestHandler(t, testGatewayConfig(), creator, nil)

	rec := doRequest(h, http.MethodPost, `{"title": "t", "description": "d"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "503")
	assert.NotContains(t, rec.Body.String(), "lin_api_test", "credential must never appear in responses")
}

func TestPipeline_MisconfiguredTracker(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Tracker.Credential = ""

	creator := &fakeCreator{}
	h := buildTestHandler(t, cfg, creator, nil)

	rec := doRequest(h, http.MethodPost, `{"title": "t", "description": "d"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, creator.calls)
}

func TestPipeline_RequestIDAssigned(t *testing.T) {
	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-1"}}
	h := buildTestHandler(t, testGatewayConfig(), creator, nil)

	rec := doRequest(h, http.MethodPost, `{"title": "t", "description": "d"}`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(h, http.MethodPost, `{"title": "t", "description": "d"}`, func(r *http.Request) {
		r.Header.Set("X-Request-ID", "propagate-me")
	})
	assert.Equal(t, "propagate-me", rec.Header().Get("X-Request-ID"))
}

func TestListener_StartStop(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.Listen = "127.0.0.1:0"

	ln := NewListener("test", cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx := t.Context()
	require.NoError(t, ln.Start(ctx))
	require.True(t, ln.Running())

	resp, err := http.Get("http://" + ln.Address())
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, ln.Stop(ctx))
	assert.Error(t, func() error {
		_, err := http.Get("http://" + ln.Address())
		return err
	}())
}
