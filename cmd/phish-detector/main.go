package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"regexp"
	"strings"

	"github.com/phishnot/phishnot/internal/adapters/filter"
	"github.com/phishnot/phishnot/internal/config"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/factory"
	"github.com/phishnot/phishnot/internal/logging"
	"github.com/phishnot/phishnot/internal/utils"
	"go.uber.org/zap"
)

var (
	// Analyzer provider flags
	providers   = flag.String("providers", "openai", "Comma-separated content analyzer providers (openai, gemini, bedrock)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for analyzer response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for analyzer generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for analyzer generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to analyzers")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// URL reputation flags
	safebrowsingAPIKey = flag.String("safebrowsing-api-key", "", "API key for Google Safe Browsing")

	// Detection flags
	whitelistDomains = flag.String("whitelist", "", "Comma-separated list of whitelisted domains")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

var bodyLinkPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Build the analyzers and the fusion engine
	textProcessor := utils.NewTextProcessor(logger)
	analyzers, err := factory.NewAnalyzerFactory(cfg, logger, textProcessor).CreateAnalyzers()
	if err != nil {
		logger.Fatal("Failed to create content analyzers", zap.Error(err))
	}
	engine, err := factory.NewEngineFactory(cfg, logger, analyzers).CreateFusionEngine()
	if err != nil {
		logger.Fatal("Failed to create fusion engine", zap.Error(err))
	}

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}
	body := string(bodyBytes)

	req := &core.AnalysisRequest{
		EmailText: body,
		Sender:    msg.Header.Get("From"),
		Subject:   msg.Header.Get("Subject"),
		Links:     bodyLinkPattern.FindAllString(body, -1),
	}

	cliFilter, err := filter.NewCliFilter(engine, nil, 0, 0, logger, *verbose)
	if err != nil {
		logger.Fatal("Failed to create CLI filter", zap.Error(err))
	}

	if _, err := cliFilter.ProcessEmail(context.Background(), req); err != nil {
		os.Exit(1)
	}

	// Close any analyzers holding network clients
	for _, analyzer := range analyzers {
		if closer, ok := analyzer.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close analyzer", zap.Error(err))
			}
		}
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	providerList := strings.Split(*providers, ",")
	for i, p := range providerList {
		providerList[i] = strings.TrimSpace(p)
	}
	v.Set("analyzers.providers", providerList)

	// Set provider-specific configuration
	for _, p := range providerList {
		switch p {
		case "bedrock":
			v.Set("bedrock.region", *bedrockRegion)
			v.Set("bedrock.model_id", *bedrockModelID)
			v.Set("bedrock.max_tokens", *maxTokens)
			v.Set("bedrock.temperature", *temperature)
			v.Set("bedrock.top_p", *topP)
			v.Set("bedrock.max_body_size", *maxBodySize)
		case "gemini":
			v.Set("gemini.api_key", *geminiAPIKey)
			v.Set("gemini.model_name", *geminiModelName)
			v.Set("gemini.max_tokens", *maxTokens)
			v.Set("gemini.temperature", *temperature)
			v.Set("gemini.top_p", *topP)
			v.Set("gemini.max_body_size", *maxBodySize)
		case "openai":
			v.Set("openai.api_key", *openaiAPIKey)
			v.Set("openai.model_name", *openaiModelName)
			v.Set("openai.max_tokens", *maxTokens)
			v.Set("openai.temperature", *temperature)
			v.Set("openai.top_p", *topP)
			v.Set("openai.max_body_size", *maxBodySize)
		}
	}

	v.Set("safebrowsing.api_key", *safebrowsingAPIKey)

	// Set whitelisted domains
	if *whitelistDomains != "" {
		domains := strings.Split(*whitelistDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("rules.whitelisted_domains", domains)
	}

	return config.NewFromViper(v)
}
