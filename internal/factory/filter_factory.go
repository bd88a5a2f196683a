package factory

import (
	"fmt"
	"time"

	"github.com/phishnot/phishnot/internal/adapters/filter"
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/ports"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	engine   *core.FusionEngine
	feedback ports.FeedbackRepository
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	engine *core.FusionEngine,
	feedback ports.FeedbackRepository,
) *FilterFactory {
	return &FilterFactory{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		feedback: feedback,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterType := f.cfg.GetString("server.filter_type")

	windowLimit := f.cfg.GetInt("feedback.window_limit")
	windowMaxAge, err := f.cfg.GetDuration("feedback.window_max_age")
	if err != nil {
		windowMaxAge = 30 * 24 * time.Hour
	}

	switch filterType {
	case "smtp":
		return filter.NewSMTPFilter(
			f.engine,
			f.feedback,
			windowLimit,
			windowMaxAge,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetBool("server.block_phishing"),
			f.cfg.GetString("server.headers.status"),
			f.cfg.GetString("server.headers.score"),
			f.cfg.GetString("server.headers.risk"),
			f.cfg.GetString("server.headers.patterns"),
			f.cfg.GetString("server.relay.address"),
			f.cfg.GetInt("server.relay.port"),
			f.cfg.GetBool("server.relay.enabled"),
			f.cfg.GetString("server.subject_prefix"),
			f.cfg.GetBool("server.modify_subject"),
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.engine,
			f.feedback,
			windowLimit,
			windowMaxAge,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}
