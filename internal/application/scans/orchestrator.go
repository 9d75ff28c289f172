package scans

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	domain "github.com/bryanwahyu/neural-health/internal/domain/scans"
)

// State of a single scan invocation.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateSubmitted  State = "submitted"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Orchestrator issues the text and image requests of one scan concurrently and
// merges their results. It holds no per-scan state and is safe for concurrent use.
type Orchestrator struct {
	Text  domain.TextAnalyzer
	Image domain.ImageAnalyzer

	// OnState, when set, is called on every state transition of a scan.
	OnState func(State)
}

func NewOrchestrator(text domain.TextAnalyzer, image domain.ImageAnalyzer) *Orchestrator {
	return &Orchestrator{Text: text, Image: image}
}

func (o *Orchestrator) transition(s State) {
	if o.OnState != nil {
		o.OnState(s)
	}
}

// RunScan validates req, runs the mandatory text call and the optional image call
// in parallel, and returns the combined outcome once both have settled.
func (o *Orchestrator) RunScan(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisOutcome, error) {
	o.transition(StateIdle)
	o.transition(StateValidating)
	if err := req.Validate(); err != nil {
		o.transition(StateRejected)
		return domain.AnalysisOutcome{}, err
	}
	if err := ctx.Err(); err != nil {
		o.transition(StateFailed)
		return domain.AnalysisOutcome{}, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}

	o.transition(StateSubmitted)

	var (
		textPreds  []domain.TextPrediction
		imagePreds []domain.VisionPrediction
		imageErr   error
	)

	// a failed text call cancels the image call through gctx
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		preds, err := o.Text.AnalyzeText(gctx, domain.TextQuery{
			Text:        req.SymptomText,
			Temperature: req.Temperature,
		})
		if err != nil {
			return err
		}
		if len(preds) == 0 || preds[0].Disease == "" {
			return fmt.Errorf("%w: no ranked predictions", domain.ErrMalformedResponse)
		}
		textPreds = preds
		return nil
	})
	if req.Image != nil && o.Image != nil {
		img := *req.Image
		g.Go(func() error {
			preds, err := o.Image.AnalyzeImage(gctx, img)
			switch {
			case err != nil:
				imageErr = err
			case len(preds) == 0 || preds[0].Condition == "":
				imageErr = fmt.Errorf("%w: no ranked image predictions", domain.ErrMalformedResponse)
			default:
				imagePreds = preds
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.transition(StateFailed)
		if ctx.Err() != nil && !errors.Is(err, domain.ErrMalformedResponse) {
			return domain.AnalysisOutcome{}, fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
		}
		return domain.AnalysisOutcome{}, fmt.Errorf("%w: %w", domain.ErrAnalysisUnavailable, err)
	}

	outcome := domain.BuildOutcome(domain.ToPrediction(textPreds[0]), req.Temperature)
	if req.Image != nil {
		switch {
		case imagePreds != nil:
			outcome.ImageStatus = domain.ImageAnalyzed
			outcome.ImagePrediction = &domain.ImagePrediction{
				Condition:       imagePreds[0].Condition,
				ConfidenceLabel: imagePreds[0].Confidence,
			}
		case imageErr != nil:
			outcome.ImageStatus = domain.ImageNotProcessed
			outcome.ImageFailure = imageErr.Error()
		default:
			outcome.ImageStatus = domain.ImageNotProcessed
			outcome.ImageFailure = "image analysis is not configured"
		}
	}

	o.transition(StateSucceeded)
	return outcome, nil
}
