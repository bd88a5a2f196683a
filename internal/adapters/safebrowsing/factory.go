package safebrowsing

import (
	"context"
	"fmt"

	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	safebrowsing "google.golang.org/api/safebrowsing/v4"
)

// Factory creates Safe Browsing checkers
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Safe Browsing factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateChecker creates a new URL reputation checker
func (f *Factory) CreateChecker() (core.URLReputationChecker, error) {
	sbCfg := f.cfg.GetSafeBrowsing()

	var service *safebrowsing.Service
	if sbCfg.APIKey != "" {
		var err error
		service, err = safebrowsing.NewService(context.Background(), option.WithAPIKey(sbCfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Safe Browsing service: %w", err)
		}
	} else {
		f.logger.Warn("Safe Browsing API key not configured; URL checks will return zero signals")
	}

	return NewChecker(
		service,
		sbCfg.ClientID,
		sbCfg.ClientVersion,
		sbCfg.ThreatTypes,
		sbCfg.ThreatScore,
		f.logger,
	), nil
}
