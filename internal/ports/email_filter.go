package ports

import (
	"context"

	"github.com/phishnot/phishnot/internal/core"
)

// EmailFilter is an ingestion surface that feeds emails into the
// detection engine
type EmailFilter interface {
	// ProcessEmail analyzes one email and returns the verdict
	ProcessEmail(ctx context.Context, req *core.AnalysisRequest) (*core.Verdict, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}
