package di

import (
	"go.uber.org/dig"

	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/factory"
	"github.com/phishnot/phishnot/internal/logging"
	"github.com/phishnot/phishnot/internal/ports"
	"github.com/phishnot/phishnot/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAnalyzerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFeedbackFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register content analyzers
	if err := container.Provide(func(f *factory.AnalyzerFactory) ([]core.ContentAnalyzer, error) {
		return f.CreateAnalyzers()
	}); err != nil {
		return nil, err
	}

	// Register fusion engine
	if err := container.Provide(func(f *factory.EngineFactory) (*core.FusionEngine, error) {
		return f.CreateFusionEngine()
	}); err != nil {
		return nil, err
	}

	// Register feedback repository
	if err := container.Provide(func(f *factory.FeedbackFactory) (ports.FeedbackRepository, error) {
		return f.CreateFeedbackRepository()
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
