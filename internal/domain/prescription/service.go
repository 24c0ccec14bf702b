package prescription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rxcheck/rxcheck/internal/platform/blobstore"
	"github.com/rxcheck/rxcheck/internal/platform/telemetry"
)

var (
	ErrStrategyUnavailable = errors.New("evaluation strategy is not configured")
	ErrReportsUnavailable  = errors.New("report export is not configured")
	ErrInvalidReport       = errors.New("report document must be a JSON object")
)

type Service struct {
	history         HistoryStore
	ids             *IDSource
	evaluators      map[Strategy]Evaluator
	defaultStrategy Strategy
	renderer        PDFRenderer
	reports         blobstore.Store
	reporter        *telemetry.Reporter
	logger          zerolog.Logger
}

// NewService starts with the local strategy registered as the default.
func NewService(history HistoryStore, ids *IDSource, logger zerolog.Logger) *Service {
	if ids == nil {
		ids = NewIDSource(nil)
	}
	return &Service{
		history:         history,
		ids:             ids,
		evaluators:      map[Strategy]Evaluator{StrategyLocal: NewLocalEvaluator(nil)},
		defaultStrategy: StrategyLocal,
		logger:          logger,
	}
}

// SetEvaluator registers ev for strategy, replacing any previous one.
func (s *Service) SetEvaluator(strategy Strategy, ev Evaluator) {
	s.evaluators[strategy] = ev
}

func (s *Service) SetDefaultStrategy(strategy Strategy) error {
	if _, ok := s.evaluators[strategy]; !ok {
		return fmt.Errorf("%w: %s", ErrStrategyUnavailable, strategy)
	}
	s.defaultStrategy = strategy
	return nil
}

func (s *Service) DefaultStrategy() Strategy { return s.defaultStrategy }

// SetReports enables report export through renderer into store.
func (s *Service) SetReports(renderer PDFRenderer, store blobstore.Store) {
	s.renderer = renderer
	s.reports = store
}

// SetReporter attaches an error reporter. A nil reporter is allowed.
func (s *Service) SetReporter(r *telemetry.Reporter) {
	s.reporter = r
}

// NewForm returns an empty draft sharing the service id source.
func (s *Service) NewForm() *Form {
	return NewForm(s.ids)
}

// Evaluate validates p as a form and scores the snapshot with strategy, or
// the default strategy when empty. Validation failures are *ValidationError
// and remote failures are *AnalysisError.
func (s *Service) Evaluate(ctx context.Context, p Prescription, strategy Strategy) (*Evaluation, error) {
	form := NewFormFrom(p, s.ids)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if strategy == "" {
		strategy = s.defaultStrategy
	}
	ev, ok := s.evaluators[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyUnavailable, strategy)
	}

	result, err := ev.Evaluate(ctx, form.Snapshot())
	if err != nil {
		var aerr *AnalysisError
		if errors.As(err, &aerr) {
			s.reporter.CaptureError(ctx, err, map[string]string{"strategy": string(strategy)})
		}
		return nil, err
	}

	s.logger.Info().
		Str("strategy", string(result.Strategy)).
		Int("score", result.Score).
		Str("rating", string(result.Rating)).
		Int("issues", len(result.Issues)).
		Int("critical", result.CriticalCount()).
		Msg("prescription evaluated")
	return result, nil
}

// Finalize appends the structured output to the prescription history.
func (s *Service) Finalize(ctx context.Context, out StructuredOutput) (*SavedPrescription, error) {
	if len(out.Medicines) == 0 {
		return nil, &ValidationError{Title: "Empty Prescription", Message: "Please add at least one medicine."}
	}
	saved, err := s.history.SavePrescription(ctx, out)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save prescription")
		return nil, fmt.Errorf("save prescription: %w", err)
	}
	return saved, nil
}

// History returns one page of saved prescriptions, newest first, and the
// total number saved.
func (s *Service) History(ctx context.Context, limit, offset int) ([]SavedPrescription, int, error) {
	all, err := s.history.GetPrescriptions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("get prescriptions: %w", err)
	}
	total := len(all)

	newest := make([]SavedPrescription, total)
	for i, p := range all {
		newest[total-1-i] = p
	}

	offset = max(0, min(offset, total))
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return newest[offset:end], total, nil
}

// ExportReport renders doc, an evaluation document, as a PDF through the
// analysis backend and stores the result. Render failures are *AnalysisError.
func (s *Service) ExportReport(ctx context.Context, doc json.RawMessage, createdBy string) (*blobstore.Metadata, error) {
	if s.renderer == nil || s.reports == nil {
		return nil, ErrReportsUnavailable
	}
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidReport
	}

	pdf, err := s.renderer.GeneratePDF(ctx, json.RawMessage(trimmed))
	if err != nil {
		s.logger.Error().Err(err).Msg("pdf generation failed")
		aerr := toAnalysisError(err)
		s.reporter.CaptureError(ctx, aerr, map[string]string{"op": "generate-pdf"})
		return nil, aerr
	}

	meta := blobstore.Metadata{
		FileName:    pdf.FileName,
		ContentType: "application/pdf",
		CreatedBy:   createdBy,
		Tags:        reportTags(trimmed),
	}
	stored, err := s.reports.Upload(ctx, meta, bytes.NewReader(pdf.Content))
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	s.logger.Info().Str("report_id", stored.ID).Int64("size", stored.Size).Msg("report exported")
	return stored, nil
}

// reportTags copies score and rating onto the stored report when doc carries
// them at the top level or under meta.
func reportTags(doc []byte) map[string]string {
	var probe struct {
		Score  *int   `json:"score"`
		Rating string `json:"rating"`
		Meta   *Meta  `json:"meta"`
	}
	tags := map[string]string{}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return tags
	}
	if probe.Meta != nil {
		tags["score"] = strconv.Itoa(probe.Meta.Score)
		tags["rating"] = string(probe.Meta.Rating)
	}
	if probe.Score != nil {
		tags["score"] = strconv.Itoa(*probe.Score)
	}
	if probe.Rating != "" {
		tags["rating"] = probe.Rating
	}
	return tags
}
