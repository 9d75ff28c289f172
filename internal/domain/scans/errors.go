package scans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is caller-correctable; no network call was made.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysisUnavailable means the mandatory text analysis did not produce a usable result.
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
	// ErrNetwork marks transport failures, as opposed to an error status from the endpoint.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse is returned when an endpoint body cannot be decoded or is empty.
	ErrMalformedResponse = errors.New("malformed prediction response")
	// ErrCancelled is returned when the caller cancels before the text call settles.
	ErrCancelled = errors.New("scan cancelled")
)

// UpstreamStatusError is a non-success HTTP status from a prediction endpoint.
// Body is kept for server logs only and is not part of Error(), so it never
// reaches the failure log or a client.
type UpstreamStatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// UpstreamBody returns the endpoint body carried by err, if any.
func UpstreamBody(err error) string {
	var us *UpstreamStatusError
	if errors.As(err, &us) {
		return us.Body
	}
	return ""
}
