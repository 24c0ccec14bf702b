package prescription

import (
	"context"

	"github.com/rxcheck/rxcheck/internal/platform/analysis"
)

// HistoryStore persists finalized prescriptions.
type HistoryStore interface {
	SavePrescription(ctx context.Context, out StructuredOutput) (*SavedPrescription, error)
	GetPrescriptions(ctx context.Context) ([]SavedPrescription, error)
}

// PDFRenderer turns an evaluation document into a PDF.
type PDFRenderer interface {
	GeneratePDF(ctx context.Context, payload interface{}) (*analysis.PDF, error)
}
