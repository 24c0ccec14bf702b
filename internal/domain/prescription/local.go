package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	missingFieldPenalty  = 10
	highBPPenalty        = 5
	polypharmacyPenalty  = 5
	polypharmacyLimit    = 5
	systolicUpperLimit   = 140
	diastolicUpperLimit  = 90
	polypharmacyMessage  = "Polypharmacy: More than 5 medicines prescribed."
	highBPMessageFormat  = "High Blood Pressure detected (%s). Verify medication."
	missingDosageLabel   = "Missing Dosage"
	missingFreqLabel     = "Missing Frequency"
	missingDurationLabel = "Missing Duration"
)

// Evaluate scores p with the completeness and safety heuristics. It is pure
// apart from stamping now into the structured output.
func Evaluate(p Prescription, now time.Time) EvaluationResult {
	score := 100
	issues := []Issue{}

	for _, m := range p.Medicines {
		var missing []string
		if blank(m.Dosage) {
			missing = append(missing, missingDosageLabel)
		}
		if blank(m.Frequency) {
			missing = append(missing, missingFreqLabel)
		}
		if blank(m.Duration) {
			missing = append(missing, missingDurationLabel)
		}
		if len(missing) > 0 {
			score -= missingFieldPenalty * len(missing)
			issues = append(issues, Issue{
				Severity: SeverityCritical,
				Message:  m.Name + ": " + strings.Join(missing, ", "),
			})
		}
	}

	if bp := p.Vitals.BloodPressure; bp != "" && highBloodPressure(bp) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf(highBPMessageFormat, bp),
		})
		score -= highBPPenalty
	}

	if len(p.Medicines) > polypharmacyLimit {
		score -= polypharmacyPenalty
		issues = append(issues, Issue{Severity: SeverityWarning, Message: polypharmacyMessage})
	}

	if score < 0 {
		score = 0
	}
	rating := RatingFor(score)

	return EvaluationResult{
		Score:            score,
		Rating:           rating,
		Issues:           issues,
		StructuredOutput: buildStructuredOutput(p, score, rating, now),
	}
}

// highBloodPressure reads "systolic/diastolic". Each side is parsed on its
// own from its leading digits; a side that has none is ignored, so "abc"
// never warns while "150/abc" does.
func highBloodPressure(bp string) bool {
	parts := strings.Split(bp, "/")
	if sys, ok := leadingInt(parts[0]); ok && sys > systolicUpperLimit {
		return true
	}
	if len(parts) > 1 {
		if dia, ok := leadingInt(parts[1]); ok && dia > diastolicUpperLimit {
			return true
		}
	}
	return false
}

// leadingInt parses an optionally signed run of digits after leading
// whitespace and ignores whatever follows ("95 mmHg" is 95).
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n < 1_000_000 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func buildStructuredOutput(p Prescription, score int, rating Rating, now time.Time) StructuredOutput {
	meds := make([]StructuredMedicine, 0, len(p.Medicines))
	for _, m := range p.Medicines {
		notes := m.Notes
		if notes == "" {
			notes = NotesPlaceholder
		}
		meds = append(meds, StructuredMedicine{
			Name:      m.Name,
			Type:      m.Type,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
			Notes:     notes,
		})
	}
	return StructuredOutput{
		Meta: Meta{
			Timestamp: now.UTC(),
			Score:     score,
			Rating:    rating,
		},
		Patient:   p.Patient,
		Vitals:    p.Vitals,
		Diagnosis: p.Diagnosis,
		Medicines: meds,
	}
}

// LocalEvaluator adapts Evaluate to the Evaluator interface.
type LocalEvaluator struct {
	now func() time.Time
}

func NewLocalEvaluator(now func() time.Time) *LocalEvaluator {
	if now == nil {
		now = time.Now
	}
	return &LocalEvaluator{now: now}
}

func (e *LocalEvaluator) Evaluate(_ context.Context, p Prescription) (*Evaluation, error) {
	return &Evaluation{
		Strategy:         StrategyLocal,
		EvaluationResult: Evaluate(p.Clone(), e.now()),
	}, nil
}
