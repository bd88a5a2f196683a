package openai

import (
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new instances of the OpenAI analyzer
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAI analyzers
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new OpenAI content analyzer
func (f *Factory) CreateAnalyzer() (core.ContentAnalyzer, error) {
	openaiCfg := f.cfg.GetOpenAI()

	var client *openai.Client
	if openaiCfg.APIKey != "" {
		client = openai.NewClient(openaiCfg.APIKey)
	} else {
		// Missing credential degrades at evaluation time rather than
		// failing startup
		f.logger.Warn("OpenAI API key not configured; analyzer will return zero signals")
	}

	return NewAnalyzer(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
