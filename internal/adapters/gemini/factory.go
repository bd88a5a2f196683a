package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Factory creates new instances of the Gemini analyzer
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini analyzers
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new Gemini content analyzer
func (f *Factory) CreateAnalyzer() (core.ContentAnalyzer, error) {
	geminiCfg := f.cfg.GetGemini()

	var client *genai.Client
	if geminiCfg.APIKey != "" {
		var err error
		client, err = genai.NewClient(context.Background(), option.WithAPIKey(geminiCfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	} else {
		f.logger.Warn("Gemini API key not configured; analyzer will return zero signals")
	}

	return NewAnalyzer(
		client,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
