package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/phishnot/phishnot/internal/adapters/feedback"
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/ports"
	"go.uber.org/zap"
)

// FeedbackFactory creates feedback repositories based on configuration
type FeedbackFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFeedbackFactory creates a new feedback factory
func NewFeedbackFactory(cfg *config.Config, logger *zap.Logger) *FeedbackFactory {
	return &FeedbackFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateFeedbackRepository creates a feedback repository based on the configuration
func (f *FeedbackFactory) CreateFeedbackRepository() (ports.FeedbackRepository, error) {
	storeType := f.cfg.GetString("feedback.type")
	maxAge, err := f.GetWindowMaxAge()
	if err != nil {
		return nil, fmt.Errorf("invalid feedback window max age: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("feedback.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid feedback cleanup frequency: %w", err)
	}

	switch storeType {
	case "memory":
		return feedback.NewMemoryStore(f.logger, maxAge, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("feedback.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return feedback.NewSQLiteStore(sqlitePath, f.logger, maxAge, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("feedback.mysql_dsn")
		return feedback.NewMySQLStore(mysqlDSN, f.logger, maxAge, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported feedback store type: %s", storeType)
	}
}

// GetWindowLimit returns the configured feedback window size
func (f *FeedbackFactory) GetWindowLimit() int {
	return f.cfg.GetInt("feedback.window_limit")
}

// GetWindowMaxAge returns the configured feedback window max age
func (f *FeedbackFactory) GetWindowMaxAge() (time.Duration, error) {
	return f.cfg.GetDuration("feedback.window_max_age")
}
