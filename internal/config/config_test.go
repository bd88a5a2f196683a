package config

import (
	"testing"
	"time"

	"github.com/phishnot/phishnot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, []string{"openai", "gemini"}, cfg.GetAnalyzers().Providers)
	assert.Equal(t, "smtp", cfg.GetString("server.filter_type"))
	assert.Equal(t, "X-Phishing-Status", cfg.GetString("server.headers.status"))
	assert.Equal(t, "memory", cfg.GetString("feedback.type"))
	assert.Contains(t, cfg.GetWhitelistedDomains(), "gov.in")

	timeout, err := cfg.GetDuration("analyzers.timeout")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)
}

func TestGetFusion_MatchesCodeDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	fusion := cfg.GetFusion()
	assert.Equal(t, core.DefaultFusionConfig(), fusion)
}

func TestGetFusion_ViperOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("fusion.rule_weight", 0.5)
	v.Set("fusion.default_threshold", 0.42)
	cfg := NewFromViper(v)

	fusion := cfg.GetFusion()
	assert.Equal(t, 0.5, fusion.RuleWeight)
	assert.Equal(t, 0.42, fusion.DefaultThreshold)
	// Untouched keys keep the code defaults
	assert.Equal(t, core.DefaultFusionConfig().CriticalIncrement, fusion.CriticalIncrement)
}

func TestGetHistory_MatchesCodeDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, core.DefaultHistoryConfig(), cfg.GetHistory())
}

func TestGetRules_LookalikeOverride(t *testing.T) {
	v := NewEmptyViper()
	v.Set("rules.lookalike_threshold", 0.85)
	cfg := NewFromViper(v)

	assert.Equal(t, 0.85, cfg.GetRules().LookAlikeThreshold)
}
