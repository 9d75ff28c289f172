package scans

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Validate checks an AnalysisRequest before any network call is made.
func (r AnalysisRequest) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(r.SymptomText))
	if n < MinSymptomLength {
		return fmt.Errorf("%w: please provide more details about your symptoms (at least %d characters)", ErrInvalidInput, MinSymptomLength)
	}
	if n > MaxSymptomLength {
		return fmt.Errorf("%w: symptom description exceeds %d characters", ErrInvalidInput, MaxSymptomLength)
	}
	if r.Temperature != nil && (math.IsNaN(*r.Temperature) || math.IsInf(*r.Temperature, 0)) {
		return fmt.Errorf("%w: temperature must be a finite number", ErrInvalidInput)
	}
	if r.Image != nil {
		if len(r.Image.Data) == 0 {
			return fmt.Errorf("%w: image is empty", ErrInvalidInput)
		}
		if !strings.HasPrefix(strings.ToLower(r.Image.ContentType), "image/") {
			return fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, r.Image.ContentType)
		}
	}
	return nil
}
