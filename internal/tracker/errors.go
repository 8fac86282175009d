package tracker

import "fmt"

// UpstreamError indicates a transport failure or non-success HTTP status
// from the tracker API.
type UpstreamError struct {
	// Status is the upstream HTTP status, or 0 for transport failures.
	Status int

	// Body is the upstream response body, if any.
	Body string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("tracker request failed: %s", e.Body)
	}
	return fmt.Sprintf("tracker returned %d: %s", e.Status, e.Body)
}

// LogicError indicates the tracker was reachable but reported a structured
// failure inside its response payload (GraphQL errors).
type LogicError struct {
	Details string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("tracker API error: %s", e.Details)
}

// UnexpectedResponseError indicates the tracker reported success but the
// response did not carry the expected issue URL.
type UnexpectedResponseError struct {
	Raw string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("tracker response missing issue url: %s", e.Raw)
}
