package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/neural-health/internal/application/ai"
	appscans "github.com/bryanwahyu/neural-health/internal/application/scans"
	domai "github.com/bryanwahyu/neural-health/internal/domain/ai"
	"github.com/bryanwahyu/neural-health/internal/domain/history"
	domain "github.com/bryanwahyu/neural-health/internal/domain/scans"
	"github.com/bryanwahyu/neural-health/internal/middleware"
)

const (
	defaultMaxUpload = 10 << 20
	// nginx convention for a client that went away mid-request
	statusClientClosedRequest = 499
)

// Message shown by the front-end when the text analysis cannot complete.
const unavailableMessage = "Analysis service unavailable. Please try again later."

var errBadRequest = errors.New("bad request")

type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	APIKeys        []string
	Limiter        *middleware.RateLimiter
	Metrics        *middleware.Metrics
	Checkers       map[string]middleware.HealthChecker
	Log            *zap.Logger
	// TrustProxy takes the client address from proxy headers; enable only behind a proxy you control.
	TrustProxy     bool
}

type Router struct {
	scansSvc  *appscans.Service
	aiSvc     *appai.Service
	maxUpload int64
	log       *zap.Logger
}

// NewRouter wires the HTTP surface. aiSvc may be nil, in which case the explain route is not mounted.
func NewRouter(scansSvc *appscans.Service, aiSvc *appai.Service, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	r := &Router{scansSvc: scansSvc, aiSvc: aiSvc, maxUpload: maxUpload, log: log}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	if opts.TrustProxy {
		mux.Use(chimw.RealIP)
	}
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(log))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.HealthHandler(opts.Checkers))
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Group(func(api chi.Router) {
		api.Use(middleware.APIKeyAuth(opts.APIKeys))

		api.Post("/v1/markers", r.wrap(r.handleMarkers))

		api.Route("/v1/sessions/{session}", func(rt chi.Router) {
			rt.Use(requireSession)
			if opts.Limiter != nil {
				rt.With(middleware.RateLimit(opts.Limiter)).Post("/scans", r.wrap(r.handleScan))
			} else {
				rt.Post("/scans", r.wrap(r.handleScan))
			}
			rt.Get("/history", r.wrap(r.handleHistory))
			rt.Delete("/history", r.wrap(r.handleClearHistory))
			rt.Get("/history/{id}", r.wrap(r.handleRecord))
			rt.Get("/errors", r.wrap(r.handleErrors))
			if aiSvc != nil {
				rt.Post("/history/{id}/explain", r.wrap(r.handleExplain))
			}
		})
	})

	return mux
}

func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := middleware.ValidateSessionID(chi.URLParam(req, "session")); err != nil {
			writeJSONError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		next.ServeHTTP(w, req)
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
			writeJSONError(w, http.StatusUnprocessableEntity, "invalid_input", msg)
		case errors.Is(err, errBadRequest):
			msg := strings.TrimPrefix(err.Error(), errBadRequest.Error()+": ")
			writeJSONError(w, http.StatusBadRequest, "bad_request", msg)
		case errors.Is(err, domain.ErrCancelled):
			r.log.Info("request cancelled by client", zap.String("path", req.URL.Path))
			w.WriteHeader(statusClientClosedRequest)
		case errors.Is(err, domain.ErrAnalysisUnavailable):
			writeJSONError(w, http.StatusServiceUnavailable, "analysis_unavailable", unavailableMessage)
		case errors.Is(err, history.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "not_found", "record not found")
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeJSONError(w, http.StatusTooManyRequests, "ai_quota_exceeded", "ai quota exceeded")
		default:
			r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal", "internal server error")
		}
	}
}

// POST /v1/sessions/{session}/scans
// multipart form: text, temperature (optional), file (optional image)
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	session := chi.URLParam(req, "session")
	areq, err := r.parseScanForm(w, req)
	if err != nil {
		return err
	}

	scan, err := r.scansSvc.Scan(req.Context(), appscans.ScanCommand{SessionID: session, Request: areq})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, scan)
}

func (r *Router) parseScanForm(w http.ResponseWriter, req *http.Request) (domain.AnalysisRequest, error) {
	var areq domain.AnalysisRequest
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return areq, fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrInvalidInput, r.maxUpload)
			}
			return areq, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if err := req.ParseForm(); err != nil {
			return areq, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	areq.SymptomText = middleware.SanitizeString(req.FormValue("text"))

	if raw := strings.TrimSpace(req.FormValue("temperature")); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return areq, fmt.Errorf("%w: temperature must be a number", domain.ErrInvalidInput)
		}
		areq.Temperature = &t
	}

	if req.MultipartForm == nil {
		return areq, nil
	}
	file, header, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return areq, nil
	}
	if err != nil {
		return areq, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return areq, fmt.Errorf("%w: reading upload: %v", errBadRequest, err)
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	areq.Image = &domain.ImageAttachment{
		Filename:    header.Filename,
		ContentType: ct,
		Data:        data,
	}
	return areq, nil
}

// GET /v1/sessions/{session}/history?limit=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	session := chi.URLParam(req, "session")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit, history.MaxEntries, history.MaxEntries)

	page, err := r.scansSvc.History(req.Context(), session, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, page)
}

// GET /v1/sessions/{session}/history/{id}
func (r *Router) handleRecord(w http.ResponseWriter, req *http.Request) error {
	session := chi.URLParam(req, "session")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	rec, err := r.scansSvc.Record(req.Context(), session, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// DELETE /v1/sessions/{session}/history
func (r *Router) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	if err := r.scansSvc.ClearHistory(req.Context(), chi.URLParam(req, "session")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/sessions/{session}/errors?limit=
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	session := chi.URLParam(req, "session")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit, 20, 100)

	list, err := r.scansSvc.Failures(req.Context(), session, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"data": list, "session_id": session})
}

// POST /v1/sessions/{session}/history/{id}/explain
func (r *Router) handleExplain(w http.ResponseWriter, req *http.Request) error {
	session := chi.URLParam(req, "session")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	out, err := r.aiSvc.Explain(req.Context(), session, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

type markersResponse struct {
	domain.Feedback
	TemperatureBand string `json:"temperature_band,omitempty"`
	SeverityLabel   string `json:"severity_label,omitempty"`
}

// POST /v1/markers
// Body: {"text": "...", "temperature": 38.2, "severity": 6}
func (r *Router) handleMarkers(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text        string   `json:"text"`
		Temperature *float64 `json:"temperature"`
		Severity    *int     `json:"severity"`
	}
	if err := json.NewDecoder(io.LimitReader(req.Body, 64<<10)).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	resp := markersResponse{Feedback: domain.LiveFeedback(body.Text)}
	if body.Temperature != nil {
		resp.TemperatureBand = domain.TemperatureBand(*body.Temperature)
	}
	if body.Severity != nil {
		resp.SeverityLabel = domain.SeverityLabel(*body.Severity)
	}
	return writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, kind, msg string) {
	_ = writeJSON(w, code, map[string]string{"error": kind, "message": msg})
}
