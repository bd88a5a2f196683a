package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/phishnot/phishnot/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the FeedbackRepository interface
type SQLiteStore struct {
	db          *sql.DB
	logger      *zap.Logger
	maxAge      time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteStore creates a new SQLite feedback store
func NewSQLiteStore(dbPath string, logger *zap.Logger, maxAge, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS feedback (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			requester_id TEXT NOT NULL,
			original_result TEXT NOT NULL,
			user_correction TEXT NOT NULL,
			reason_text TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on requester_id and created_at for window queries and pruning
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_feedback_requester_created
		ON feedback(requester_id, created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	store := &SQLiteStore{
		db:          db,
		logger:      logger,
		maxAge:      maxAge,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store, nil
}

// Record stores one user correction for a requester
func (s *SQLiteStore) Record(ctx context.Context, requesterID string, rec core.FeedbackRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (requester_id, original_result, user_correction, reason_text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, requesterID, string(rec.OriginalResult), rec.UserCorrection, rec.ReasonText, rec.CreatedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert feedback record: %w", err)
	}

	return nil
}

// Recent returns up to limit records for a requester, newest first,
// no older than maxAge
func (s *SQLiteStore) Recent(ctx context.Context, requesterID string, limit int, maxAge time.Duration) ([]core.FeedbackRecord, error) {
	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx, `
		SELECT original_result, user_correction, reason_text, created_at
		FROM feedback
		WHERE requester_id = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`, requesterID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback records: %w", err)
	}
	defer rows.Close()

	var records []core.FeedbackRecord
	for rows.Next() {
		var originalResult, createdAt string
		var rec core.FeedbackRecord
		if err := rows.Scan(&originalResult, &rec.UserCorrection, &rec.ReasonText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback record: %w", err)
		}
		rec.OriginalResult = core.Result(originalResult)
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			s.logger.Error("Failed to parse created_at timestamp", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Prune removes records older than maxAge
func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM feedback
		WHERE created_at < ?
	`, cutoff)

	if err != nil {
		return fmt.Errorf("failed to prune stale records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during prune", zap.Error(err))
	} else {
		s.logger.Debug("Pruned stale feedback records", zap.Int64("pruned_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to prune stale records
func (s *SQLiteStore) startCleanupTask() {
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

// Close stops the background cleanup task and closes the database connection
func (s *SQLiteStore) Close() error {
	close(s.stopCh)
	return s.db.Close()
}
