// Package client files bug reports with Linear from an application.
//
// Two modes: call the Linear API directly with an API key, or go through a
// report gateway that holds the key (recommended for open source or
// distributed binaries).
//
//	// Via gateway (with optional bearer token)
//	c := client.NewProxy("https://reports.example.com/report",
//		client.WithToken("secret-token"))
//	url, err := c.CreateIssue(ctx, "crash on startup", "details...", nil)
//
//	// Direct
//	c := client.NewDirect("lin_api_...", "team-id", "project-id")
//	url, err := c.CreateIssue(ctx, "crash on startup", "details...", nil)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hotlinehq/hotline/internal/tracker"
)

// LinearAPIURL is the Linear GraphQL endpoint used in direct mode.
const LinearAPIURL = "https://api.linear.app/graphql"

// DefaultTimeout bounds a single report submission.
const DefaultTimeout = 30 * time.Second

// InfoField is one row of the system info table appended to a report.
type InfoField struct {
	Key   string
	Value string
}

// ProxyError is returned when the gateway rejects a report.
type ProxyError struct {
	Status int
	Body   string
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Body)
}

// ParseError is returned when a response cannot be interpreted.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %s", e.Reason)
}

// Option configures a client.
type Option func(*options)

type options struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// WithToken sets a bearer token for gateway authentication. It has no
// effect in direct mode.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithHTTPClient sets the HTTP client used for submissions.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithEndpoint overrides the GraphQL endpoint used in direct mode. It has
// no effect in proxy mode.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return o
}

// DirectClient calls Linear's GraphQL API directly with an API key.
type DirectClient struct {
	upstream *tracker.Client
}

// NewDirect creates a client that calls Linear directly.
func NewDirect(apiKey, teamID, projectID string, opts ...Option) *DirectClient {
	o := applyOptions(opts)
	if o.endpoint == "" {
		o.endpoint = LinearAPIURL
	}

	return &DirectClient{
		upstream: tracker.NewClient(tracker.Config{
			Endpoint:   o.endpoint,
			Credential: apiKey,
			TeamID:     teamID,
			ProjectID:  projectID,
		}, tracker.WithHTTPClient(o.httpClient)),
	}
}

// CreateIssue files a bug report and returns the URL of the created issue.
// systemInfo rows are appended to the description as a markdown table.
func (c *DirectClient) CreateIssue(ctx context.Context, title, description string, systemInfo []InfoField) (string, error) {
	issue, err := c.upstream.CreateIssue(ctx, title, FormatDescription(description, systemInfo))
	if err != nil {
		return "", err
	}
	return issue.URL, nil
}

// ProxyClient posts bug reports to a report gateway.
type ProxyClient struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewProxy creates a client that submits reports through a gateway.
func NewProxy(url string, opts ...Option) *ProxyClient {
	o := applyOptions(opts)

	return &ProxyClient{
		url:        url,
		token:      o.token,
		httpClient: o.httpClient,
	}
}

// reportPayload is the gateway wire format.
type reportPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateIssue files a bug report via the gateway and returns the URL of
// the created issue.
func (c *ProxyClient) CreateIssue(ctx context.Context, title, description string, systemInfo []InfoField) (string, error) {
	body, err := json.Marshal(reportPayload{
		Title:       title,
		Description: FormatDescription(description, systemInfo),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ParseError{Reason: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProxyError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ParseError{Reason: err.Error()}
	}
	if parsed.URL == "" {
		return "", &ParseError{Reason: "gateway response missing url"}
	}

	return parsed.URL, nil
}

// FormatDescription appends a system info markdown table to a report
// description. An empty description with no fields yields an empty string.
func FormatDescription(description string, systemInfo []InfoField) string {
	var b strings.Builder

	if description != "" {
		b.WriteString(description)
		b.WriteString("\n\n")
	}

	if len(systemInfo) > 0 {
		b.WriteString("## System Info\n\n")
		b.WriteString("| Field | Value |\n|-------|-------|\n")
		for _, field := range systemInfo {
			fmt.Fprintf(&b, "| %s | %s |\n", field.Key, field.Value)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
