package gateway

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// reportResponse is the JSON body for a successfully filed report.
type reportResponse struct {
	URL string `json:"url"`
}

// Stable client-facing error messages. Upstream detail is logged, not
// echoed, except for the upstream status which callers need to diagnose
// tracker-side failures.
const (
	msgInvalidPayload   = "invalid request payload"
	msgMissingTitle     = "title is required"
	msgMissingBody      = "description is required"
	msgMisconfigured    = "gateway is not configured for issue creation"
	msgUpstreamFailed   = "failed to create issue"
	msgUpstreamResponse = "unexpected response from issue tracker"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
