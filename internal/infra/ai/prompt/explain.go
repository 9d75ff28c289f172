package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/neural-health/internal/domain/ai"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a careful health information assistant. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Never present the pattern as a diagnosis; describe it as a possible pattern.
- risk must repeat the risk level you were given: Low, Medium or High.
- next_steps is an ordered array of short sentences.
- Always include the disclaimer text exactly as given in the schema.

Schema (example with empty values):
{
  "pattern": "<string>",
  "risk": "<Low|Medium|High>",
  "summary": "<string>",
  "next_steps": ["<string>"],
  "disclaimer": "This is an AI-powered informational tool. Always consult healthcare professionals for medical advice."
}`
}

// GetUserPrompt builds a compact user message around a stored scan.
func GetUserPrompt(in ai.ExplainInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain this symptom scan and respond with the JSON per schema.\n")
	fmt.Fprintf(&b, "Symptoms: %s\n", in.Symptoms)
	fmt.Fprintf(&b, "Pattern: %s\n", in.Pattern)
	fmt.Fprintf(&b, "Confidence: %s\n", in.Confidence)
	fmt.Fprintf(&b, "Risk: %s\n", in.Risk)
	if in.Image != "" {
		fmt.Fprintf(&b, "Image finding: %s\n", in.Image)
	}
	return b.String()
}

// Suggestion is the structure requested by the system prompt.
type Suggestion struct {
	Pattern    string   `json:"pattern"`
	Risk       string   `json:"risk"`
	Summary    string   `json:"summary"`
	NextSteps  []string `json:"next_steps"`
	Disclaimer string   `json:"disclaimer"`
}
