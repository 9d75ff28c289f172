package middleware

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateSessionID validates session ID format
func ValidateSessionID(session string) error {
	if session == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if !sessionIDPattern.MatchString(session) {
		return fmt.Errorf("invalid session ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateRecordID checks history record / scan IDs, which are UUIDs.
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("record ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid record ID format")
	}
	return nil
}

// ValidateLimit clamps a listing limit into [1, max], using def when unset.
func ValidateLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
