package factory

import (
	"fmt"

	"github.com/phishnot/phishnot/internal/adapters/bedrock"
	"github.com/phishnot/phishnot/internal/adapters/gemini"
	"github.com/phishnot/phishnot/internal/adapters/openai"
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"go.uber.org/zap"
)

// AnalyzerFactory creates the configured set of content analyzers
type AnalyzerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *AnalyzerFactory {
	return &AnalyzerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzers creates one content analyzer per configured provider
func (f *AnalyzerFactory) CreateAnalyzers() ([]core.ContentAnalyzer, error) {
	providers := f.cfg.GetAnalyzers().Providers

	analyzers := make([]core.ContentAnalyzer, 0, len(providers))
	for _, provider := range providers {
		analyzer, err := f.createAnalyzer(provider)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s analyzer: %w", provider, err)
		}
		analyzers = append(analyzers, analyzer)
	}
	return analyzers, nil
}

func (f *AnalyzerFactory) createAnalyzer(provider string) (core.ContentAnalyzer, error) {
	switch provider {
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateAnalyzer()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateAnalyzer()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateAnalyzer()
	default:
		return nil, fmt.Errorf("unsupported analyzer provider: %s", provider)
	}
}
