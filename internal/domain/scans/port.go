package scans

import "context"

// TextQuery is the body of the text analysis request.
type TextQuery struct {
	Text        string
	Temperature *float64
}

// TextAnalyzer port (mandatory prediction endpoint)
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, q TextQuery) ([]TextPrediction, error)
}

// ImageAnalyzer port (optional vision endpoint)
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, img ImageAttachment) ([]VisionPrediction, error)
}

// ImageArchive port (penyimpanan gambar upload)
type ImageArchive interface {
	Put(ctx context.Context, key string, img ImageAttachment) (string, error)
}
