package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	domain "github.com/bryanwahyu/neural-health/internal/domain/scans"
)

const maxErrorBody = 512

// Observer receives the latency of each upstream call.
type Observer interface {
	ObserveUpstream(endpoint string, status string, d time.Duration)
}

// Client talks to the external prediction service over multipart HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	textPath   string
	imagePath  string
	observer   Observer
}

type Options struct {
	BaseURL   string
	TextPath  string
	ImagePath string
	// Timeout of 0 means no client-side timeout; callers bound calls with ctx.
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("predictor base URL is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	c := &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		textPath:   orDefault(opts.TextPath, "/predict"),
		imagePath:  orDefault(opts.ImagePath, "/predict-image"),
		observer:   opts.Observer,
	}
	return c, nil
}

type textResponse struct {
	TopPredictions []domain.TextPrediction `json:"top_predictions"`
	Predictions    []domain.TextPrediction `json:"predictions"`
}

type imageResponse struct {
	TopPredictions []domain.VisionPrediction `json:"top_predictions"`
	Predictions    []domain.VisionPrediction `json:"predictions"`
}

// AnalyzeText posts the symptom text (and temperature when present).
func (c *Client) AnalyzeText(ctx context.Context, q domain.TextQuery) ([]domain.TextPrediction, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("text", q.Text); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if q.Temperature != nil {
		if err := mw.WriteField("temperature", strconv.FormatFloat(*q.Temperature, 'f', -1, 64)); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	var out textResponse
	if err := c.post(ctx, "text", c.textPath, mw.FormDataContentType(), &body, &out); err != nil {
		return nil, err
	}
	if len(out.TopPredictions) > 0 {
		return out.TopPredictions, nil
	}
	return out.Predictions, nil
}

// AnalyzeImage posts the image as the "file" form field.
func (c *Client) AnalyzeImage(ctx context.Context, img domain.ImageAttachment) ([]domain.VisionPrediction, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, orDefault(img.Filename, "upload")))
	h.Set("Content-Type", orDefault(img.ContentType, "application/octet-stream"))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	var out imageResponse
	if err := c.post(ctx, "image", c.imagePath, mw.FormDataContentType(), &body, &out); err != nil {
		return nil, err
	}
	if len(out.TopPredictions) > 0 {
		return out.TopPredictions, nil
	}
	return out.Predictions, nil
}

func (c *Client) post(ctx context.Context, endpoint, path, contentType string, body io.Reader, out any) error {
	start := time.Now()
	status := "network_error"
	defer func() {
		if c.observer != nil {
			c.observer.ObserveUpstream(endpoint, status, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s endpoint: %w", domain.ErrNetwork, endpoint, err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.UpstreamStatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s endpoint: %v", domain.ErrMalformedResponse, endpoint, err)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
