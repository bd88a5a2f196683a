package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/generative-ai-go/genai"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"go.uber.org/zap"
)

const maxListLength = 10

// Analyzer is a ContentAnalyzer implementation backed by Google Gemini
type Analyzer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// signalResponse is the structured reply the model is prompted to emit
type signalResponse struct {
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
	Patterns []string `json:"patterns"`
}

// NewAnalyzer creates a new Gemini content analyzer. The client may be
// nil when no API key is configured; evaluation then degrades to a
// zero signal.
func NewAnalyzer(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Analyzer {
	var model *genai.GenerativeModel
	if client != nil {
		model = client.GenerativeModel(modelName)
		model.SetTemperature(temperature)
		model.SetTopP(topP)
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	return &Analyzer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a phishing detection system. Analyze the following email and determine whether it is a phishing attempt.
Respond with a JSON object containing:
- score: number between 0 and 1 (higher means more likely phishing)
- reasons: array of short strings, each naming one indicator you found
- patterns: array of attack pattern tags, chosen only from: social_engineering, impersonation, brand_spoofing, tracking, credential_harvesting, domain_spoofing, suspicious_domain, url_shortener, ip_address_link, urgency_language, grammar_issues

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// Name identifies this analyzer in logs and explanations
func (a *Analyzer) Name() string {
	return "gemini"
}

// Close closes the underlying Gemini client
func (a *Analyzer) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// Analyze scores an email's content for phishing indicators. Failures
// never escape this boundary.
func (a *Analyzer) Analyze(ctx context.Context, req *core.AnalysisRequest) core.SignalResult {
	if a.model == nil {
		return core.ZeroSignal("gemini analyzer not configured")
	}

	body := a.textProcessor.ProcessText(req.EmailText, a.maxBodySize)
	prompt := fmt.Sprintf(a.promptFormat, req.Sender, req.Subject, body)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		a.logger.Warn("Gemini analysis failed", zap.Error(err))
		return core.ZeroSignal("gemini analysis unavailable")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		a.logger.Warn("Gemini returned an empty response")
		return core.ZeroSignal("gemini returned no content")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return parseSignalResponse(responseText, "gemini", a.logger)
}

var numberPattern = regexp.MustCompile(`(?:0?\.\d+|[01](?:\.\d+)?)`)

// parseSignalResponse validates the model reply against the expected
// shape, with best-effort numeric fallback for unstructured output
func parseSignalResponse(responseText, source string, logger *zap.Logger) core.SignalResult {
	var parsed signalResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		jsonStart := -1
		jsonEnd := -1
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}
		if jsonStart < 0 || jsonEnd <= jsonStart || json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed) != nil {
			return fallbackSignal(responseText, source, logger)
		}
	}

	result := core.SignalResult{
		Score:    core.Clamp01(parsed.Score),
		Reasons:  truncateList(parsed.Reasons, maxListLength),
		Patterns: canonicalPatterns(parsed.Patterns, maxListLength),
	}
	return result.Clamped()
}

func fallbackSignal(responseText, source string, logger *zap.Logger) core.SignalResult {
	m := numberPattern.FindString(responseText)
	if m == "" {
		logger.Warn("Analyzer response was unparseable", zap.String("analyzer", source))
		return core.ZeroSignal(source + " response could not be parsed")
	}
	score, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return core.ZeroSignal(source + " response could not be parsed")
	}
	logger.Warn("Analyzer response fell back to numeric extraction",
		zap.String("analyzer", source),
		zap.Float64("score", score))
	return core.SignalResult{
		Score:    core.Clamp01(score),
		Reasons:  []string{source + " returned unstructured output; score extracted heuristically"},
		Patterns: []core.PatternTag{core.PatternAIDetectedFallback},
	}
}

func truncateList(items []string, max int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > max {
		return items[:max]
	}
	return items
}

func canonicalPatterns(tokens []string, max int) []core.PatternTag {
	out := make([]core.PatternTag, 0, len(tokens))
	for _, t := range tokens {
		if tag, ok := core.CanonicalPattern(t); ok {
			out = append(out, tag)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}
