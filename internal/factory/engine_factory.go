package factory

import (
	"time"

	"github.com/phishnot/phishnot/internal/adapters/safebrowsing"
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/rules"
	"github.com/phishnot/phishnot/internal/whitelist"
	"go.uber.org/zap"
)

// EngineFactory assembles the fusion engine from its configured parts
type EngineFactory struct {
	cfg       *config.Config
	logger    *zap.Logger
	analyzers []core.ContentAnalyzer
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config, logger *zap.Logger, analyzers []core.ContentAnalyzer) *EngineFactory {
	return &EngineFactory{
		cfg:       cfg,
		logger:    logger,
		analyzers: analyzers,
	}
}

// CreateFusionEngine creates the fusion engine with the rule engine and
// every configured signal adapter wired in
func (f *EngineFactory) CreateFusionEngine() (*core.FusionEngine, error) {
	wl := whitelist.NewChecker(f.cfg.GetWhitelistedDomains(), f.logger)
	ruleEngine := rules.NewEngine(f.cfg.GetRules(), wl, f.logger)

	urlChecker, err := safebrowsing.NewFactory(f.cfg, f.logger).CreateChecker()
	if err != nil {
		return nil, err
	}

	timeout, err := f.cfg.GetDuration("analyzers.timeout")
	if err != nil {
		timeout = 15 * time.Second
	}

	return core.NewFusionEngine(
		ruleEngine,
		f.analyzers,
		urlChecker,
		f.cfg.GetFusion(),
		f.cfg.GetHistory(),
		timeout,
		f.logger,
	), nil
}
