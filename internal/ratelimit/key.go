package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// IdentityFunc extracts the client identity used as the rate limit key
// from an HTTP request.
type IdentityFunc func(r *http.Request) string

// ClientIdentity returns an IdentityFunc that uses the client network
// address. Proxy-supplied headers (X-Forwarded-For, X-Real-IP) are only
// honored when trustProxyHeaders is set, i.e. when a trusted front tier
// strips and rewrites them; otherwise a client could choose its own
// identity and defeat admission control.
//
// Returns an empty string when no identity can be determined; policy for
// that case lives with the caller.
func ClientIdentity(trustProxyHeaders bool) IdentityFunc {
	return func(r *http.Request) string {
		if trustProxyHeaders {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				// First address is the original client.
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
			if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
				return xri
			}
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil && host != "" {
			return host
		}

		// RemoteAddr without a port (some test servers and unix sockets).
		addr := strings.TrimSpace(r.RemoteAddr)
		addr = strings.TrimPrefix(addr, "[")
		addr = strings.TrimSuffix(addr, "]")
		return addr
	}
}
