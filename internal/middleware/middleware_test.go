package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hotlinehq/hotline/internal/observability"
)

func TestRecovery(t *testing.T) {
	h := Recovery(observability.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/report", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, ErrBodyInternal, rec.Body.String())
}

func TestRequestID_Generated(t *testing.T) {
	var got string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = observability.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/report", nil))

	assert.NotEmpty(t, got)
	assert.Equal(t, got, rec.Header().Get(HeaderXRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	var got string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = observability.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/report", nil)
	req.Header.Set(HeaderXRequestID, "inbound-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "inbound-id", got)
	assert.Equal(t, "inbound-id", rec.Header().Get(HeaderXRequestID))
}

func TestAllowMethod(t *testing.T) {
	h := AllowMethod(http.MethodPost)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/report", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	}
}

func TestBodyLimit_DeclaredTooLarge(t *testing.T) {
	h := BodyLimit(16, observability.NopLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, ErrBodyTooLarge, rec.Body.String())
}

func TestBodyLimit_CapsReader(t *testing.T) {
	var readErr error
	h := BodyLimit(16, observability.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, readErr = r.Body.Read(buf)
	}))

	// No Content-Length (chunked), so the up-front check passes and the
	// capped reader has to stop the overrun.
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Error(t, readErr)
}

func TestBodyLimit_WithinLimit(t *testing.T) {
	h := BodyLimit(1024, observability.NopLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader("small"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
