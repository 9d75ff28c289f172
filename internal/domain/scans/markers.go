package scans

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Marker is a symptom category detected in free text while the user types.
type Marker string

const (
	MarkerPain        Marker = "pain"
	MarkerFever       Marker = "fever"
	MarkerRespiratory Marker = "respiratory"
	MarkerDuration    Marker = "duration"
	MarkerTiming      Marker = "timing"
)

var markerPatterns = []struct {
	marker Marker
	re     *regexp.Regexp
}{
	{MarkerPain, regexp.MustCompile(`(?i)pain|ache|hurt|sore`)},
	{MarkerFever, regexp.MustCompile(`(?i)fever|hot|temperature`)},
	{MarkerRespiratory, regexp.MustCompile(`(?i)cough|throat`)},
	{MarkerDuration, regexp.MustCompile(`(?i)hour|day|week|month|since`)},
	{MarkerTiming, regexp.MustCompile(`(?i)morning|evening|night|afternoon`)},
}

// Feedback is the live hint returned while symptoms are being typed.
type Feedback struct {
	Markers []Marker `json:"markers"`
	Hint    string   `json:"hint,omitempty"`
	Length  int      `json:"length"`
	Ready   bool     `json:"ready"`
}

// DetectMarkers returns the markers found in text, in a fixed order.
func DetectMarkers(text string) []Marker {
	out := make([]Marker, 0, len(markerPatterns))
	for _, p := range markerPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.marker)
		}
	}
	return out
}

// LiveFeedback builds the typing feedback for a partial symptom description.
func LiveFeedback(text string) Feedback {
	n := utf8.RuneCountInString(text)
	fb := Feedback{
		Markers: DetectMarkers(text),
		Length:  n,
		Ready:   utf8.RuneCountInString(strings.TrimSpace(text)) >= MinSymptomLength,
	}
	switch {
	case len(fb.Markers) > 0:
		names := make([]string, len(fb.Markers))
		for i, m := range fb.Markers {
			names[i] = string(m)
		}
		fb.Hint = "Detected: " + strings.Join(names, ", ")
	case n > 20:
		fb.Hint = "Continue describing..."
	}
	return fb
}

// TemperatureBand classifies a body temperature in degrees Celsius.
func TemperatureBand(t float64) string {
	switch {
	case t < 36:
		return "Low"
	case t < 37.5:
		return "Normal"
	case t < 38.5:
		return "Elevated"
	default:
		return "High"
	}
}

var severityLabels = [...]string{
	"Minimal", "Mild", "Mild", "Moderate", "Moderate",
	"Moderate", "Severe", "Severe", "Very Severe", "Critical",
}

// SeverityLabel names a 1..10 severity score; out of range values return "".
func SeverityLabel(score int) string {
	if score < 1 || score > len(severityLabels) {
		return ""
	}
	return severityLabels[score-1]
}
