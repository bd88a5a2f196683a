package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/phishnot/phishnot/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the FeedbackRepository interface
type MemoryStore struct {
	records     map[string][]core.FeedbackRecord
	mu          sync.RWMutex
	logger      *zap.Logger
	maxAge      time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryStore creates a new in-memory feedback store
func NewMemoryStore(logger *zap.Logger, maxAge, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		records:     make(map[string][]core.FeedbackRecord),
		logger:      logger,
		maxAge:      maxAge,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store
}

// Record stores one user correction for a requester
func (s *MemoryStore) Record(ctx context.Context, requesterID string, rec core.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[requesterID] = append(s.records[requesterID], rec)
	return nil
}

// Recent returns up to limit records for a requester, newest first,
// no older than maxAge
func (s *MemoryStore) Recent(ctx context.Context, requesterID string, limit int, maxAge time.Duration) ([]core.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-maxAge)
	all := s.records[requesterID]

	recent := make([]core.FeedbackRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].CreatedAt.Before(cutoff) {
			continue
		}
		recent = append(recent, all[i])
		if limit > 0 && len(recent) >= limit {
			break
		}
	}

	return recent, nil
}

// Prune removes records older than maxAge
func (s *MemoryStore) Prune(ctx context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	prunedCount := 0

	for requesterID, all := range s.records {
		kept := all[:0]
		for _, rec := range all {
			if rec.CreatedAt.Before(cutoff) {
				prunedCount++
				continue
			}
			kept = append(kept, rec)
		}
		if len(kept) == 0 {
			delete(s.records, requesterID)
		} else {
			s.records[requesterID] = kept
		}
	}

	s.logger.Debug("Pruned stale feedback records", zap.Int("pruned_count", prunedCount))
	return nil
}

// startCleanupTask starts a background task to prune stale records
func (s *MemoryStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Prune(context.Background(), s.maxAge); err != nil {
				s.logger.Error("Failed to prune feedback store", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Close stops the background cleanup task
func (s *MemoryStore) Close() error {
	close(s.stopCh)
	return nil
}
