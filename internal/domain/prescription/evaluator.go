package prescription

import (
	"context"
	"fmt"
	"strings"

	"github.com/rxcheck/rxcheck/internal/platform/analysis"
)

// Strategy selects which evaluator scores a prescription.
type Strategy string

const (
	StrategyLocal  Strategy = "local"
	StrategyRemote Strategy = "remote"
)

// ParseStrategy accepts "local" or "remote" in any case. An empty string
// parses to the empty Strategy, meaning "use the default".
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StrategyLocal, StrategyRemote:
		return st, nil
	default:
		return "", fmt.Errorf("unknown evaluation strategy %q (want local or remote)", s)
	}
}

// Evaluation is the common result of both strategies. Analysis is set only by
// the remote strategy and holds the backend document as received.
type Evaluation struct {
	Strategy Strategy `json:"strategy"`
	EvaluationResult
	Analysis *analysis.Report `json:"analysis,omitempty"`
}

// Evaluator scores a prescription snapshot. Implementations must not retain
// or modify p.
type Evaluator interface {
	Evaluate(ctx context.Context, p Prescription) (*Evaluation, error)
}
