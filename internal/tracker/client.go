// Package tracker provides the upstream Linear client. The gateway makes
// exactly one issueCreate mutation per admitted request; there are no
// retries and no deduplication, so client-side retries after a timeout can
// create duplicate issues upstream.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotlinehq/hotline/internal/observability"
)

// issueCreateMutation creates an issue under a team/project and returns
// its URL.
const issueCreateMutation = `mutation IssueCreate($input: IssueCreateInput!) {
	issueCreate(input: $input) {
		success
		issue {
			id
			identifier
			url
		}
	}
}`

// maxErrorBodyBytes caps how much of an upstream error body is carried
// into error messages and logs.
const maxErrorBodyBytes = 4 * 1024

// Issue is a created issue.
type Issue struct {
	URL        string
	Identifier string
}

// Config holds the tracker client configuration. Credential, team, and
// project are the server-side values from the gateway configuration;
// nothing a reporting client sends ever reaches this struct.
type Config struct {
	Endpoint   string
	Credential string
	TeamID     string
	ProjectID  string
	Timeout    time.Duration
}

// Client calls the Linear GraphQL API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     observability.Logger
	tracer     *observability.Tracer
}

// Option is a functional option for the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTracer sets the tracer.
func WithTracer(tracer *observability.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithHTTPClient sets the HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a new tracker client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}

	return c
}

// graphqlRequest is the JSON body of a GraphQL call.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// issueCreateResponse is the subset of the upstream response the gateway
// interprets.
type issueCreateResponse struct {
	Data struct {
		IssueCreate struct {
			Success bool `json:"success"`
			Issue   struct {
				ID         string `json:"id"`
				Identifier string `json:"identifier"`
				URL        string `json:"url"`
			} `json:"issue"`
		} `json:"issueCreate"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CreateIssue performs a single issueCreate mutation for the given title
// and description and returns the created issue.
func (c *Client) CreateIssue(ctx context.Context, title, description string) (*Issue, error) {
	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "tracker.issue_create")
		defer span.End()
		span.SetAttributes(attribute.String("tracker.team_id", c.cfg.TeamID))

		issue, err := c.createIssue(ctx, title, description)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(attribute.String("tracker.issue_identifier", issue.Identifier))
		return issue, nil
	}

	return c.createIssue(ctx, title, description)
}

func (c *Client) createIssue(ctx context.Context, title, description string) (*Issue, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: issueCreateMutation,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{
				"teamId":      c.cfg.TeamID,
				"projectId":   c.cfg.ProjectID,
				"title":       title,
				"description": description,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.Credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The error string from the HTTP client never contains the
		// credential; it is safe to surface.
		return nil, &UpstreamError{Body: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed issueCreateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &UnexpectedResponseError{Raw: string(respBody)}
	}

	if len(parsed.Errors) > 0 {
		messages := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &LogicError{Details: strings.Join(messages, "; ")}
	}

	issue := parsed.Data.IssueCreate.Issue
	if issue.URL == "" {
		return nil, &UnexpectedResponseError{Raw: string(respBody)}
	}

	c.logger.Info("created issue",
		observability.String("identifier", issue.Identifier),
		observability.String("url", issue.URL),
	)

	return &Issue{
		URL:        issue.URL,
		Identifier: issue.Identifier,
	}, nil
}
