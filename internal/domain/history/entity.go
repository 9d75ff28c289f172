package history

import (
	"time"
	"unicode/utf8"

	"github.com/bryanwahyu/neural-health/internal/domain/scans"
)

const (
	// MaxEntries is the retention cap per session; older records are evicted.
	MaxEntries = 10
	// maxInputRunes limits the symptom excerpt kept in a record.
	maxInputRunes = 100
)

// Record is a compact, stored summary of a successful scan.
type Record struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"session_id"`
	CreatedAt       time.Time       `json:"date"`
	Input           string          `json:"input"`
	Pattern         string          `json:"pattern"`
	Confidence      string          `json:"confidence"`
	Risk            scans.RiskLevel `json:"risk"`
	ImageCondition  string          `json:"image_condition,omitempty"`
	ImageConfidence string          `json:"image_confidence,omitempty"`
}

// NewRecord summarizes a scan for the history list.
func NewRecord(s *scans.Scan, input string) *Record {
	r := &Record{
		ID:         s.ID,
		SessionID:  s.SessionID,
		CreatedAt:  s.CreatedAt,
		Input:      Excerpt(input),
		Pattern:    s.Outcome.Pattern,
		Confidence: s.Outcome.Confidence,
		Risk:       s.Outcome.Risk,
	}
	if ip := s.Outcome.ImagePrediction; ip != nil {
		r.ImageCondition = ip.Condition
		r.ImageConfidence = ip.ConfidenceLabel
	}
	return r
}

// Excerpt cuts input to the stored length without splitting a rune.
func Excerpt(input string) string {
	if utf8.RuneCountInString(input) <= maxInputRunes {
		return input
	}
	runes := []rune(input)
	return string(runes[:maxInputRunes])
}

// Page is a history listing returned to clients
type Page struct {
	Data      []*Record `json:"data"`
	SessionID string    `json:"session_id"`
	Total     int       `json:"totalItems"`
}
