package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotlinehq/hotline/internal/tracker"
)

// fakeCreator is a scriptable IssueCreator.
type fakeCreator struct {
	issue *tracker.Issue
	err   error
	calls int

	lastTitle       string
	lastDescription string
}

func (f *fakeCreator) CreateIssue(_ context.Context, title, description string) (*tracker.Issue, error) {
	f.calls++
	f.lastTitle = title
	f.lastDescription = description
	if f.err != nil {
		return nil, f.err
	}
	return f.issue, nil
}

func newTestHandler(creator IssueCreator) *Handler {
	return NewHandler(HandlerOptions{
		Creator:    creator,
		Configured: true,
	})
}

func postReport(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Success(t *testing.T) {
	creator := &fakeCreator{issue: &tracker.Issue{
		URL:        "https://linear.app/acme/issue/HOT-1",
		Identifier: "HOT-1",
	}}
	h := newTestHandler(creator)

	rec := postReport(t, h, `{"title": "crash", "description": "it crashed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://linear.app/acme/issue/HOT-1", resp.URL)

	assert.Equal(t, "crash", creator.lastTitle)
	assert.Equal(t, "it crashed", creator.lastDescription)
}

func TestHandler_NotConfigured(t *testing.T) {
	creator := &fakeCreator{}
	h := NewHandler(HandlerOptions{Creator: creator, Configured: false})

	rec := postReport(t, h, `{"title": "crash", "description": "d"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, creator.calls, "an unconfigured gateway must not call upstream")
}

func TestHandler_MalformedJSON(t *testing.T) {
	creator := &fakeCreator{}
	h := newTestHandler(creator)

	rec := postReport(t, h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, creator.calls)
}

func TestHandler_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no title", `{"description": "d"}`},
		{"empty title", `{"title": "", "description": "d"}`},
		{"whitespace title", `{"title": "   ", "description": "d"}`},
		{"no description", `{"title": "t"}`},
		{"empty description", `{"title": "t", "description": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{}
			h := newTestHandler(creator)

			rec := postReport(t, h, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, creator.calls, "validation failures must not reach upstream")
		})
	}
}

func TestHandler_ClientRoutingFieldsIgnored(t *testing.T) {
	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-2"}}
	h := newTestHandler(creator)

	// Extra fields, including attempts to pick a team or smuggle a
	// credential, are simply dropped by the decoder.
	rec := postReport(t, h, `{
		"title": "t",
		"description": "d",
		"teamId": "attacker-team",
		"projectId": "attacker-project",
		"credential": "stolen"
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t", creator.lastTitle)
	assert.Equal(t, "d", creator.lastDescription)
}

func TestHandler_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport failure", &tracker.UpstreamError{Body: "connection refused"}},
		{"upstream status", &tracker.UpstreamError{Status: 500, Body: "oops"}},
		{"logic error", &tracker.LogicError{Details: "team not found"}},
		{"unexpected shape", &tracker.UnexpectedResponseError{Raw: `{"data":{}}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{err: tt.err}
			h := newTestHandler(creator)

			rec := postReport(t, h, `{"title": "t", "description": "d"}`)

			assert.Equal(t, http.StatusBadGateway, rec.Code)
			assert.Equal(t, 1, creator.calls, "a failed attempt must not be retried")
		})
	}
}

func TestHandler_NoDeduplication(t *testing.T) {
	creator := &fakeCreator{issue: &tracker.Issue{URL: "https://linear.app/acme/issue/HOT-3"}}
	h := newTestHandler(creator)

	body := `{"title": "same", "description": "same"}`
	rec1 := postReport(t, h, body)
	rec2 := postReport(t, h, body)

	assert.Equal(t, http.StatusOK, rec1.Code)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, 2, creator.calls, "identical reports each create an issue")
}
