package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"go.uber.org/zap"
)

const maxListLength = 10

// Analyzer is a ContentAnalyzer implementation backed by Amazon Bedrock
type Analyzer struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewAnalyzer creates a new Bedrock content analyzer
func NewAnalyzer(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Analyzer {
	return &Analyzer{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
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
	return "bedrock"
}

func (a *Analyzer) isAnthropicModel() bool {
	return strings.Contains(a.modelID, "anthropic")
}

func (a *Analyzer) isAmazonTitanModel() bool {
	return strings.Contains(a.modelID, "amazon.titan")
}

// Analyze scores an email's content for phishing indicators. Failures
// never escape this boundary.
func (a *Analyzer) Analyze(ctx context.Context, req *core.AnalysisRequest) core.SignalResult {
	if a.client == nil {
		return core.ZeroSignal("bedrock analyzer not configured")
	}

	body := a.textProcessor.ProcessText(req.EmailText, a.maxBodySize)
	prompt := fmt.Sprintf(a.promptFormat, req.Sender, req.Subject, body)

	var payload []byte
	var err error
	if a.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": a.maxTokens,
			"temperature":          a.temperature,
			"top_p":                a.topP,
		})
	} else if a.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": a.maxTokens,
				"temperature":   a.temperature,
				"topP":          a.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  a.maxTokens,
			"temperature": a.temperature,
			"top_p":       a.topP,
		})
	}
	if err != nil {
		a.logger.Warn("Failed to marshal Bedrock payload", zap.Error(err))
		return core.ZeroSignal("bedrock request could not be built")
	}

	resp, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &a.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.logger.Warn("Bedrock analysis failed", zap.Error(err))
		return core.ZeroSignal("bedrock analysis unavailable")
	}

	responseText, err := a.extractResponseText(resp.Body)
	if err != nil {
		a.logger.Warn("Failed to decode Bedrock response", zap.Error(err))
		return core.ZeroSignal("bedrock returned an undecodable response")
	}

	return parseSignalResponse(responseText, "bedrock", a.logger)
}

// extractResponseText unwraps the model-family-specific envelope around
// the generated text
func (a *Analyzer) extractResponseText(body []byte) (string, error) {
	if a.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}
	if a.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	}
	return string(body), nil
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
