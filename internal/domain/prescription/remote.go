package prescription

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rxcheck/rxcheck/internal/platform/analysis"
)

// AnalysisError is the single failure of the remote strategy. Message is
// fit to show the clinician.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string { return e.Message }

func (e *AnalysisError) Unwrap() error { return e.Err }

const defaultAnalysisMessage = "Could not analyze the prescription. Please try again."

// Analyzer is the part of the analysis client the remote strategy needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analysis.Report, error)
}

// RemoteEvaluator delegates scoring to the analysis backend in one call.
// Failures are returned as *AnalysisError and never retried.
type RemoteEvaluator struct {
	analyzer Analyzer
	now      func() time.Time
	logger   zerolog.Logger
}

func NewRemoteEvaluator(analyzer Analyzer, now func() time.Time, logger zerolog.Logger) *RemoteEvaluator {
	if now == nil {
		now = time.Now
	}
	return &RemoteEvaluator{analyzer: analyzer, now: now, logger: logger}
}

func (e *RemoteEvaluator) Evaluate(ctx context.Context, p Prescription) (*Evaluation, error) {
	p = p.Clone()
	report, err := e.analyzer.Analyze(ctx, BuildPrompt(p))
	if err != nil {
		e.logger.Error().Err(err).Int("medicines", len(p.Medicines)).Msg("remote analysis failed")
		return nil, toAnalysisError(err)
	}

	score := clampScore(report.Score)
	rating := RatingFor(score)
	return &Evaluation{
		Strategy: StrategyRemote,
		EvaluationResult: EvaluationResult{
			Score:            score,
			Rating:           rating,
			Issues:           reportIssues(report),
			StructuredOutput: buildStructuredOutput(p, score, rating, e.now()),
		},
		Analysis: report,
	}, nil
}

func toAnalysisError(err error) *AnalysisError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &AnalysisError{Message: "Analysis was cancelled before it finished.", Err: err}
	}
	var aerr *analysis.Error
	if errors.As(err, &aerr) && aerr.Message != "" {
		return &AnalysisError{Message: aerr.Message, Err: err}
	}
	return &AnalysisError{Message: defaultAnalysisMessage, Err: err}
}

func clampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	default:
		return s
	}
}

// reportIssues lifts per-medicine warnings and drug interactions out of the
// backend report as warning issues.
func reportIssues(r *analysis.Report) []Issue {
	issues := []Issue{}
	for _, m := range r.StructuredPrescription {
		for _, w := range m.Warnings {
			if strings.TrimSpace(w) == "" {
				continue
			}
			issues = append(issues, Issue{Severity: SeverityWarning, Message: m.MedicineName + ": " + w})
		}
	}
	for _, di := range r.DrugInteractions {
		if strings.TrimSpace(di) == "" {
			continue
		}
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "Drug interaction: " + di})
	}
	return issues
}
