package scans

import "time"

// Input bounds for symptom text, counted in runes after trimming.
const (
	MinSymptomLength = 15
	MaxSymptomLength = 500
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ImageStatus describes what happened to an attached image.
type ImageStatus string

const (
	ImageNone         ImageStatus = "none"
	ImageAnalyzed     ImageStatus = "analyzed"
	ImageNotProcessed ImageStatus = "not_processed"
)

// ImageAttachment is an uploaded image held in memory for one scan.
type ImageAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisRequest is the input of a single scan.
type AnalysisRequest struct {
	SymptomText string
	Temperature *float64
	Image       *ImageAttachment
}

// TextPrediction is one ranked entry returned by the text endpoint.
type TextPrediction struct {
	Disease    string `json:"disease"`
	Confidence string `json:"confidence"`
}

// VisionPrediction is one ranked entry returned by the image endpoint.
type VisionPrediction struct {
	Condition  string `json:"condition"`
	Confidence string `json:"confidence"`
}

// PredictionResult value object
type PredictionResult struct {
	Disease         string    `json:"disease"`
	ConfidenceLabel string    `json:"confidence"`
	Risk            RiskLevel `json:"risk"`
}

// ImagePrediction value object
type ImagePrediction struct {
	Condition       string `json:"condition"`
	ConfidenceLabel string `json:"confidence"`
}

// AnalysisOutcome is the presentational result of a successful scan.
type AnalysisOutcome struct {
	Pattern           string           `json:"pattern"`
	Confidence        string           `json:"confidence"`
	Risk              RiskLevel        `json:"risk"`
	RecommendedAction string           `json:"action"`
	Insight           string           `json:"insight"`
	Recommendations   []string         `json:"recommendations"`
	ImagePrediction   *ImagePrediction `json:"image_prediction,omitempty"`
	ImageStatus       ImageStatus      `json:"image_status"`

	// ImageFailure keeps the reason an attached image was not processed.
	ImageFailure string `json:"-"`
}

// Scan is a completed scan as handed to the presentation layer.
type Scan struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	Outcome   AnalysisOutcome `json:"outcome"`
	ImageURL  string          `json:"image_url,omitempty"`
}
