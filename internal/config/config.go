package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishnot/")
	v.AddConfigPath("$HOME/.phishnot")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHNOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Analyzer defaults: which content analyzers participate in fusion
	v.SetDefault("analyzers.providers", []string{"openai", "gemini"})
	v.SetDefault("analyzers.timeout", "15s")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Safe Browsing defaults
	v.SetDefault("safebrowsing.api_key", "")
	v.SetDefault("safebrowsing.client_id", "phishnot")
	v.SetDefault("safebrowsing.client_version", "1.0.0")
	v.SetDefault("safebrowsing.threat_score", 0.9)
	v.SetDefault("safebrowsing.threat_types", []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	})

	// Rule engine defaults
	v.SetDefault("rules.whitelisted_domains", []string{"gov.in", "nic.in", "gov.uk", "irs.gov"})
	v.SetDefault("rules.lookalike_threshold", 0.7)

	// Fusion defaults (see core.DefaultFusionConfig for semantics)
	v.SetDefault("fusion.rule_weight", 0.30)
	v.SetDefault("fusion.analyzer_weight", 0.25)
	v.SetDefault("fusion.url_weight", 0.35)
	v.SetDefault("fusion.consensus_boost", 0.08)
	v.SetDefault("fusion.outlier_penalty", 0.05)
	v.SetDefault("fusion.default_threshold", 0.50)
	v.SetDefault("fusion.min_single_confidence", 0.60)

	// History personalization defaults
	v.SetDefault("history.correction_rate_limit", 0.3)
	v.SetDefault("history.overcorrection_offset", -0.10)
	v.SetDefault("history.false_safe_count", 2)
	v.SetDefault("history.false_safe_offset", 0.15)
	v.SetDefault("history.sender_mention_bonus", 0.05)

	// Feedback store defaults
	v.SetDefault("feedback.type", "memory")
	v.SetDefault("feedback.window_limit", 100)
	v.SetDefault("feedback.window_max_age", "720h")
	v.SetDefault("feedback.cleanup_frequency", "1h")
	v.SetDefault("feedback.sqlite_path", "/data/phishnot_feedback.db")
	v.SetDefault("feedback.mysql_dsn", "user:password@tcp(localhost:3306)/phishnot")

	// Server defaults
	v.SetDefault("server.filter_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.headers.status", "X-Phishing-Status")
	v.SetDefault("server.headers.score", "X-Phishing-Score")
	v.SetDefault("server.headers.risk", "X-Phishing-Risk")
	v.SetDefault("server.headers.patterns", "X-Phishing-Patterns")
	v.SetDefault("server.relay.address", "127.0.0.1")
	v.SetDefault("server.relay.port", 10026)
	v.SetDefault("server.relay.enabled", false)
	v.SetDefault("server.subject_prefix", "")
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("cli.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
