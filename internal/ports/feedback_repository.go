package ports

import (
	"context"
	"time"

	"github.com/phishnot/phishnot/internal/core"
)

// FeedbackRepository stores user corrections and serves the bounded
// recent window the fusion engine personalizes against
type FeedbackRepository interface {
	// Record stores one user correction for a requester
	Record(ctx context.Context, requesterID string, rec core.FeedbackRecord) error

	// Recent returns up to limit records for a requester, newest first,
	// no older than maxAge
	Recent(ctx context.Context, requesterID string, limit int, maxAge time.Duration) ([]core.FeedbackRecord, error)

	// Prune removes records older than maxAge
	Prune(ctx context.Context, maxAge time.Duration) error

	// Close releases any underlying resources
	Close() error
}
