package scans

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/neural-health/internal/application"
	"github.com/bryanwahyu/neural-health/internal/domain/history"
	"github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
	domain "github.com/bryanwahyu/neural-health/internal/domain/scans"
)

// Recorder receives scan outcome metrics.
type Recorder interface {
	ObserveScan(result string)
	ObserveImageDegraded()
}

// Scan results reported to the Recorder.
const (
	ResultSucceeded   = "succeeded"
	ResultRejected    = "rejected"
	ResultUnavailable = "unavailable"
	ResultCancelled   = "cancelled"
)

// Service implements use-cases untuk Scan.
// Service is safe for concurrent use; FailureLog, Images and Metrics are optional.
type Service struct {
	Orchestrator *Orchestrator
	Records      history.Repository
	FailureLog   scanerrors.Repository
	Images       domain.ImageArchive
	Metrics      Recorder
	Clock        application.Clock
	Log          *zap.Logger
}

// ScanCommand untuk trigger scan
type ScanCommand struct {
	SessionID string
	Request   domain.AnalysisRequest
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) observe(result string) {
	if s.Metrics != nil {
		s.Metrics.ObserveScan(result)
	}
}

// Scan runs the orchestrator, then archives the image and appends history.
// Storage side effects never fail a scan that produced an outcome.
func (s *Service) Scan(ctx context.Context, cmd ScanCommand) (*domain.Scan, error) {
	log := s.logger().With(zap.String("session", cmd.SessionID))
	id := uuid.New().String()

	outcome, err := s.Orchestrator.RunScan(ctx, cmd.Request)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			s.observe(ResultRejected)
		case errors.Is(err, domain.ErrCancelled):
			s.observe(ResultCancelled)
			log.Info("scan cancelled", zap.String("scan_id", id))
		default:
			s.observe(ResultUnavailable)
			log.Warn("text analysis failed",
				zap.String("scan_id", id),
				zap.Error(err),
				zap.String("upstream_body", domain.UpstreamBody(err)),
			)
			s.recordFailure(log, cmd.SessionID, id, scanerrors.PhaseText, err.Error())
		}
		return nil, err
	}
	s.observe(ResultSucceeded)

	scan := &domain.Scan{
		ID:        id,
		SessionID: cmd.SessionID,
		CreatedAt: s.Clock.Now().UTC(),
		Outcome:   outcome,
	}

	if outcome.ImageStatus == domain.ImageNotProcessed {
		if s.Metrics != nil {
			s.Metrics.ObserveImageDegraded()
		}
		log.Warn("image analysis degraded", zap.String("scan_id", id), zap.String("reason", outcome.ImageFailure))
		s.recordFailure(log, cmd.SessionID, id, scanerrors.PhaseImage, outcome.ImageFailure)
	}

	if img := cmd.Request.Image; img != nil && s.Images != nil {
		key := imageKey(cmd.SessionID, id, img.Filename)
		url, err := s.Images.Put(ctx, key, *img)
		if err != nil {
			log.Warn("image archive failed", zap.String("scan_id", id), zap.Error(err))
		} else {
			scan.ImageURL = url
		}
	}

	if err := s.Records.Append(ctx, history.NewRecord(scan, strings.TrimSpace(cmd.Request.SymptomText))); err != nil {
		log.Warn("history append failed", zap.String("scan_id", id), zap.Error(err))
	}

	log.Info("scan finished",
		zap.String("scan_id", id),
		zap.String("pattern", outcome.Pattern),
		zap.String("risk", string(outcome.Risk)),
		zap.String("image_status", string(outcome.ImageStatus)),
	)
	return scan, nil
}

func (s *Service) recordFailure(log *zap.Logger, session, scanID string, phase scanerrors.Phase, msg string) {
	if s.FailureLog == nil {
		return
	}
	e := &scanerrors.ScanError{
		ID:        uuid.New().String(),
		SessionID: session,
		ScanID:    scanID,
		Phase:     phase,
		Message:   msg,
		CreatedAt: s.Clock.Now().UTC(),
	}
	// detached from the request so a cancelled client still leaves a trace
	if err := s.FailureLog.Save(context.Background(), e); err != nil {
		log.Warn("failure record not saved", zap.Error(err))
	}
}

// History returns up to limit records, newest first.
func (s *Service) History(ctx context.Context, session string, limit int) (*history.Page, error) {
	list, err := s.Records.List(ctx, session, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*history.Record{}
	}
	return &history.Page{Data: list, SessionID: session, Total: len(list)}, nil
}

// Record ambil 1 record by id
func (s *Service) Record(ctx context.Context, session, id string) (*history.Record, error) {
	return s.Records.Get(ctx, session, id)
}

func (s *Service) ClearHistory(ctx context.Context, session string) error {
	return s.Records.Clear(ctx, session)
}

// Failures lists recorded scan failures for a session.
func (s *Service) Failures(ctx context.Context, session string, limit int) ([]*scanerrors.ScanError, error) {
	if s.FailureLog == nil {
		return []*scanerrors.ScanError{}, nil
	}
	return s.FailureLog.ListBySession(ctx, session, limit)
}

// helper
func imageKey(session, scanID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s/%s", session, scanID, name)
}
