// Package middleware provides HTTP middleware components for the report
// gateway.
package middleware

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderAuthorization is the Authorization header name.
	HeaderAuthorization = "Authorization"

	// HeaderRetryAfter is the Retry-After header name.
	HeaderRetryAfter = "Retry-After"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderXRateLimitLimit is the X-RateLimit-Limit header name.
	HeaderXRateLimitLimit = "X-RateLimit-Limit"

	// HeaderXRateLimitRemaining is the X-RateLimit-Remaining header name.
	HeaderXRateLimitRemaining = "X-RateLimit-Remaining"
)

// ContentTypeJSON is the JSON content type value.
const ContentTypeJSON = "application/json"

// JSON error bodies written by short-circuiting middleware.
const (
	ErrBodyMethodNotAllowed = `{"error":"method not allowed"}`
	ErrBodyUnauthorized     = `{"error":"unauthorized"}`
	ErrBodyRateLimited      = `{"error":"rate limit exceeded"}`
	ErrBodyTooLarge         = `{"error":"request body too large"}`
	ErrBodyInternal         = `{"error":"internal server error"}`
)
