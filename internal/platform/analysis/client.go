// Package analysis is the HTTP client for the external prescription analysis
// backend: AI analysis, medicine search and PDF rendering.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	analyzePath = "/api/analyze-prescription"
	searchPath  = "/api/medicines/search"
	pdfPath     = "/api/generate-pdf"

	maxResponseBytes = 20 << 20
)

// Error is the single failure type of the client. Message is safe to show to
// a clinician.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a client for baseURL. A zero timeout leaves the
// http.Client default in place.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "analysis-client").Logger(),
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Analyze posts the prompt text and decodes the analysis report.
func (c *Client) Analyze(ctx context.Context, text string) (*Report, error) {
	const op = "analyze prescription"

	body, err := c.postJSON(ctx, op, analyzePath, analyzeRequest{Text: text})
	if err != nil {
		return nil, err
	}
	if err := checkFailure(op, body); err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, &Error{Op: op, Message: "could not read analysis response", Err: err}
	}

	c.logger.Info().Int("score", report.Score).
		Str("overall_rating", report.Evaluation.OverallRating).
		Msg("analysis received")
	return &report, nil
}

// SearchMedicines queries the backend medicine dataset.
func (c *Client) SearchMedicines(ctx context.Context, query string) ([]MedicineHit, error) {
	const op = "search medicines"

	endpoint := c.baseURL + searchPath + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Op: op, Message: "could not build request", Err: err}
	}
	body, err := c.do(op, req)
	if err != nil {
		return nil, err
	}

	var hits []MedicineHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, &Error{Op: op, Message: "could not read search response", Err: err}
	}
	return hits, nil
}

// GeneratePDF posts an evaluation document and returns the rendered PDF bytes.
func (c *Client) GeneratePDF(ctx context.Context, payload interface{}) (*PDF, error) {
	const op = "generate pdf"

	body, err := c.postJSON(ctx, op, pdfPath, payload)
	if err != nil {
		return nil, err
	}

	var resp pdfResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: op, Message: "could not read pdf response", Err: err}
	}
	if resp.PDFBase64 == "" {
		return nil, &Error{Op: op, Message: "backend returned an empty document"}
	}
	content, err := base64.StdEncoding.DecodeString(resp.PDFBase64)
	if err != nil {
		return nil, &Error{Op: op, Message: "backend returned an invalid document", Err: err}
	}
	name := resp.FileName
	if name == "" {
		name = "prescription_report.pdf"
	}
	return &PDF{FileName: name, Content: content}, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: op, Message: "could not encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Op: op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("backend unreachable")
		return nil, &Error{Op: op, Message: "analysis service is unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: "could not read response", Err: err}
	}

	c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := detailMessage(body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}

func checkFailure(op string, body []byte) error {
	var probe failureProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		// Non-object bodies are left to the typed decode.
		return nil
	}
	switch v := probe.Error.(type) {
	case bool:
		if !v {
			return nil
		}
	case string:
		if v == "" {
			return nil
		}
		if probe.Message == "" {
			probe.Message = v
		}
	case nil:
		return nil
	}
	msg := probe.Message
	if msg == "" {
		msg = "analysis failed"
	}
	return &Error{Op: op, Message: msg}
}

func detailMessage(body []byte) string {
	var probe failureProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	if probe.Message != "" {
		return probe.Message
	}
	switch d := probe.Detail.(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		b, _ := json.Marshal(d)
		return string(b)
	}
}
