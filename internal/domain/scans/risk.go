package scans

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	ActionConsultDoctor   = "Consult a Doctor"
	ActionMonitorSymptoms = "Monitor Symptoms"

	// ruleMatchMarker appears in confidence labels produced by deterministic rules ("Simple Match").
	ruleMatchMarker = "match"

	highRiskThreshold   = 80.0
	mediumRiskThreshold = 50.0
	feverThreshold      = 37.5
)

var leadingNumber = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)`)

// ParseConfidence extracts the leading numeric value of a confidence label ("98.50%" -> 98.5).
func ParseConfidence(label string) (float64, bool) {
	m := leadingNumber.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsRuleMatch reports whether the label marks a deterministic rule match.
func IsRuleMatch(label string) bool {
	return strings.Contains(strings.ToLower(label), ruleMatchMarker)
}

// DeriveRisk maps a confidence label to a risk level.
// Rule matches are always Medium; unparseable labels are Low.
func DeriveRisk(label string) RiskLevel {
	if IsRuleMatch(label) {
		return RiskMedium
	}
	v, _ := ParseConfidence(label)
	switch {
	case v >= highRiskThreshold:
		return RiskHigh
	case v >= mediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

func RecommendedAction(risk RiskLevel) string {
	if risk == RiskHigh {
		return ActionConsultDoctor
	}
	return ActionMonitorSymptoms
}

// BuildInsight renders the detail sentence shown under the primary pattern.
func BuildInsight(disease, confidence string, temperature *float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis indicates a pattern consistent with %s (confidence: %s).", disease, confidence)
	if temperature != nil && *temperature > feverThreshold {
		b.WriteString(" Elevated temperature detected.")
	}
	b.WriteString(" Based on the reported symptoms, review the recommendations below.")
	return b.String()
}

// DefaultRecommendations returns a fresh copy of the fixed recommendation list.
func DefaultRecommendations() []string {
	return []string{
		"Stay well hydrated with plenty of fluids",
		"Ensure adequate rest and sleep",
		"Monitor symptom progression over 24-48 hours",
		"Seek professional care if symptoms worsen",
	}
}

// ToPrediction builds the primary PredictionResult from the top ranked text entry.
func ToPrediction(p TextPrediction) PredictionResult {
	return PredictionResult{
		Disease:         p.Disease,
		ConfidenceLabel: p.Confidence,
		Risk:            DeriveRisk(p.Confidence),
	}
}

// BuildOutcome maps the primary prediction into the presentational outcome.
func BuildOutcome(pred PredictionResult, temperature *float64) AnalysisOutcome {
	return AnalysisOutcome{
		Pattern:           pred.Disease,
		Confidence:        pred.ConfidenceLabel,
		Risk:              pred.Risk,
		RecommendedAction: RecommendedAction(pred.Risk),
		Insight:           BuildInsight(pred.Disease, pred.ConfidenceLabel, temperature),
		Recommendations:   DefaultRecommendations(),
		ImageStatus:       ImageNone,
	}
}
