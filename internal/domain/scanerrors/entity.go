package scanerrors

import "time"

// Phase names the call that failed.
type Phase string

const (
	PhaseText  Phase = "text"
	PhaseImage Phase = "image"
)

// ScanError represents a persisted scan failure entry
type ScanError struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ScanID    string    `json:"scan_id,omitempty"`
	Phase     Phase     `json:"phase"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
