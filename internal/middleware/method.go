package middleware

import (
	"io"
	"net/http"
)

// AllowMethod returns a middleware that rejects any request whose method
// is not the given one with 405. It runs before authentication and rate
// limiting so admission bookkeeping only counts genuine attempts.
func AllowMethod(method string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				w.Header().Set(HeaderContentType, ContentTypeJSON)
				w.WriteHeader(http.StatusMethodNotAllowed)
				_, _ = io.WriteString(w, ErrBodyMethodNotAllowed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
