package ai

import "context"

// ExplainInput is the scan summary handed to the language model.
type ExplainInput struct {
	Symptoms   string
	Pattern    string
	Confidence string
	Risk       string
	Image      string
}

type Client interface {
	Explain(ctx context.Context, in ExplainInput) (string, error)
}
