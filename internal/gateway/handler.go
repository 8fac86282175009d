// Package gateway implements the report endpoint: a single POST handler
// that accepts a bug report and files it with the upstream issue tracker
// under the server-configured team and project.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hotlinehq/hotline/internal/observability"
	"github.com/hotlinehq/hotline/internal/tracker"
)

// IssueCreator files an issue with the upstream tracker.
type IssueCreator interface {
	CreateIssue(ctx context.Context, title, description string) (*tracker.Issue, error)
}

// reportRequest is the inbound report payload. Any other fields a client
// sends (team, project, credentials) are ignored; those values always come
// from the gateway configuration.
type reportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandlerOptions configures the report handler.
type HandlerOptions struct {
	// Creator files issues upstream. Required when Configured is true.
	Creator IssueCreator

	// Configured reports whether the gateway has a complete upstream
	// configuration (credential, team, project). When false every report
	// fails with 500 instead of reaching the tracker.
	Configured bool

	// Logger for request outcomes. Defaults to a nop logger.
	Logger observability.Logger

	// Metrics records upstream call outcomes. May be nil.
	Metrics *observability.Metrics
}

// Handler is the report endpoint handler.
type Handler struct {
	opts HandlerOptions
}

// NewHandler creates a report handler.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	return &Handler{opts: opts}
}

// ServeHTTP handles a single report submission. Method, authentication,
// and rate limit checks run in middleware before this handler; by the time
// a request arrives here it is a POST from an admitted client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.opts.Logger
	if id := observability.RequestIDFromContext(r.Context()); id != "" {
		logger = logger.With(observability.String("request_id", id))
	}

	if !h.opts.Configured || h.opts.Creator == nil {
		logger.Error("report rejected, upstream tracker is not configured")
		writeError(w, http.StatusInternalServerError, msgMisconfigured)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("report rejected, malformed payload", observability.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, msgMissingTitle)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, msgMissingBody)
		return
	}

	start := time.Now()
	issue, err := h.opts.Creator.CreateIssue(r.Context(), req.Title, req.Description)
	elapsed := time.Since(start)

	if err != nil {
		h.recordUpstream(outcomeForError(err), elapsed)
		logger.Error("failed to create issue",
			observability.Error(err),
			observability.Duration("elapsed", elapsed),
		)
		writeError(w, http.StatusBadGateway, clientMessageForError(err))
		return
	}

	h.recordUpstream("success", elapsed)
	logger.Info("report filed",
		observability.String("identifier", issue.Identifier),
		observability.Duration("elapsed", elapsed),
	)
	writeJSON(w, http.StatusOK, reportResponse{URL: issue.URL})
}

func (h *Handler) recordUpstream(outcome string, elapsed time.Duration) {
	if h.opts.Metrics != nil {
		h.opts.Metrics.RecordUpstream(outcome, elapsed)
	}
}

// outcomeForError classifies an upstream failure for metrics.
func outcomeForError(err error) string {
	var logicErr *tracker.LogicError
	var shapeErr *tracker.UnexpectedResponseError

	switch {
	case errors.As(err, &logicErr):
		return "logic_error"
	case errors.As(err, &shapeErr):
		return "unexpected_response"
	default:
		return "upstream_error"
	}
}

// clientMessageForError picks the 502 body for an upstream failure. The
// upstream error text is safe to echo: the tracker client never puts the
// credential into error strings.
func clientMessageForError(err error) string {
	var upstreamErr *tracker.UpstreamError
	var logicErr *tracker.LogicError
	var shapeErr *tracker.UnexpectedResponseError

	switch {
	case errors.As(err, &upstreamErr):
		return upstreamErr.Error()
	case errors.As(err, &logicErr):
		return logicErr.Error()
	case errors.As(err, &shapeErr):
		return msgUpstreamResponse
	default:
		return msgUpstreamFailed
	}
}
