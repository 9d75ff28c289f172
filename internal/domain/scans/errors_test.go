package scans

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUpstreamStatusErrorHidesBody(t *testing.T) {
	us := &UpstreamStatusError{Endpoint: "text", StatusCode: 500, Body: "internal stack"}
	err := fmt.Errorf("%w: %w", ErrAnalysisUnavailable, fmt.Errorf("text prediction: %w", us))

	if strings.Contains(err.Error(), "internal stack") {
		t.Fatalf("body leaked into message: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "text returned status 500") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if got := UpstreamBody(err); got != "internal stack" {
		t.Fatalf("body not reachable for logs: %q", got)
	}
	if got := UpstreamBody(errors.New("dial tcp: refused")); got != "" {
		t.Fatalf("expected no body, got %q", got)
	}
}
