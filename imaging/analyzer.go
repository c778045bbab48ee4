package imaging

import (
	"context"

	"cashup-backend/models"
)

// Analyzer is the optional trash-detection collaborator. Its output is stored
// on the photo record as opaque metadata and never consulted by the ledger.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath string) (*models.PhotoAnalysis, error)
}

// NopAnalyzer attaches no metadata.
type NopAnalyzer struct{}

func (NopAnalyzer) Analyze(ctx context.Context, imagePath string) (*models.PhotoAnalysis, error) {
	return nil, nil
}
