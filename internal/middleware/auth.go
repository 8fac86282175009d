package middleware

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/hotlinehq/hotline/internal/observability"
)

// BearerAuth returns a middleware that checks the Authorization header
// against a shared secret. A nil token means authentication is not
// configured and every request passes. Otherwise the header must equal
// exactly "Bearer <token>"; the comparison is constant time.
func BearerAuth(token *string, logger observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == nil {
			return next
		}
		expected := "Bearer " + *token

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(HeaderAuthorization)
			if subtle.ConstantTimeCompare([]byte(header), []byte(expected)) != 1 {
				logger.Warn("rejected unauthenticated request",
					observability.String("remote_addr", r.RemoteAddr),
					observability.Bool("header_present", header != ""),
				)

				w.Header().Set(HeaderContentType, ContentTypeJSON)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, ErrBodyUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
