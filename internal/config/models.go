package config

import (
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/rules"
)

// AnalyzersConfig selects which content analyzers participate in fusion
type AnalyzersConfig struct {
	Providers []string
	Timeout   string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// SafeBrowsingConfig represents the configuration for the URL
// reputation checker
type SafeBrowsingConfig struct {
	APIKey        string
	ClientID      string
	ClientVersion string
	ThreatScore   float64
	ThreatTypes   []string
}

// GetAnalyzers returns the analyzer selection
func (c *Config) GetAnalyzers() AnalyzersConfig {
	return AnalyzersConfig{
		Providers: c.GetStringSlice("analyzers.providers"),
		Timeout:   c.GetString("analyzers.timeout"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetSafeBrowsing returns the Safe Browsing configuration
func (c *Config) GetSafeBrowsing() SafeBrowsingConfig {
	return SafeBrowsingConfig{
		APIKey:        c.GetString("safebrowsing.api_key"),
		ClientID:      c.GetString("safebrowsing.client_id"),
		ClientVersion: c.GetString("safebrowsing.client_version"),
		ThreatScore:   c.GetFloat64("safebrowsing.threat_score"),
		ThreatTypes:   c.GetStringSlice("safebrowsing.threat_types"),
	}
}

// GetRules returns the rule engine configuration: the code-level
// defaults with the config-file tunables layered on top
func (c *Config) GetRules() rules.Config {
	cfg := rules.DefaultConfig()
	if t := c.GetFloat64("rules.lookalike_threshold"); t > 0 {
		cfg.LookAlikeThreshold = t
	}
	return cfg
}

// GetWhitelistedDomains returns the known-legitimate sender domains
func (c *Config) GetWhitelistedDomains() []string {
	return c.GetStringSlice("rules.whitelisted_domains")
}

// GetFusion returns the fusion algorithm configuration: the code-level
// defaults with the config-file tunables layered on top
func (c *Config) GetFusion() core.FusionConfig {
	cfg := core.DefaultFusionConfig()
	cfg.RuleWeight = c.GetFloat64("fusion.rule_weight")
	cfg.AnalyzerWeight = c.GetFloat64("fusion.analyzer_weight")
	cfg.URLWeight = c.GetFloat64("fusion.url_weight")
	cfg.ConsensusBoost = c.GetFloat64("fusion.consensus_boost")
	cfg.OutlierPenalty = c.GetFloat64("fusion.outlier_penalty")
	cfg.DefaultThreshold = c.GetFloat64("fusion.default_threshold")
	cfg.MinSingleConfidence = c.GetFloat64("fusion.min_single_confidence")
	return cfg
}

// GetHistory returns the personalization configuration
func (c *Config) GetHistory() core.HistoryConfig {
	return core.HistoryConfig{
		CorrectionRateLimit:  c.GetFloat64("history.correction_rate_limit"),
		OvercorrectionOffset: c.GetFloat64("history.overcorrection_offset"),
		FalseSafeCount:       c.GetInt("history.false_safe_count"),
		FalseSafeOffset:      c.GetFloat64("history.false_safe_offset"),
		SenderMentionBonus:   c.GetFloat64("history.sender_mention_bonus"),
	}
}
