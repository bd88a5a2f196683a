package openai

import (
	"context"
	"testing"

	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseSignalResponse_ValidJSON(t *testing.T) {
	response := `{"score": 0.85, "reasons": ["urgent language", "credential request"], "patterns": ["urgency_language", "credential_harvesting"]}`

	result := parseSignalResponse(response, "openai", zap.NewNop())

	assert.InDelta(t, 0.85, result.Score, 0.001)
	assert.Equal(t, []string{"urgent language", "credential request"}, result.Reasons)
	assert.Equal(t, []core.PatternTag{core.PatternUrgencyLanguage, core.PatternCredentialHarvesting}, result.Patterns)
}

func TestParseSignalResponse_JSONEmbeddedInProse(t *testing.T) {
	response := `Here is my analysis:
{"score": 0.6, "reasons": ["spoofed sender"], "patterns": ["domain_spoofing"]}
Let me know if you need more detail.`

	result := parseSignalResponse(response, "openai", zap.NewNop())

	assert.InDelta(t, 0.6, result.Score, 0.001)
	assert.Equal(t, []core.PatternTag{core.PatternDomainSpoofing}, result.Patterns)
}

func TestParseSignalResponse_UnstructuredFallback(t *testing.T) {
	response := `I would rate this email 0.75 on the phishing scale because it pressures the reader.`

	result := parseSignalResponse(response, "openai", zap.NewNop())

	assert.InDelta(t, 0.75, result.Score, 0.001)
	assert.Equal(t, []core.PatternTag{core.PatternAIDetectedFallback}, result.Patterns)
	assert.NotEmpty(t, result.Reasons)
}

func TestParseSignalResponse_GarbageDegradesToZeroSignal(t *testing.T) {
	result := parseSignalResponse("no opinion whatsoever", "openai", zap.NewNop())

	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.Patterns)
	assert.Equal(t, []string{"openai response could not be parsed"}, result.Reasons)
}

func TestParseSignalResponse_ScoreClampedAndUnknownPatternsDropped(t *testing.T) {
	response := `{"score": 7.5, "reasons": ["over-eager model"], "patterns": ["urgency_language", "made_up_pattern"]}`

	result := parseSignalResponse(response, "openai", zap.NewNop())

	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, []core.PatternTag{core.PatternUrgencyLanguage}, result.Patterns)
}

func TestParseSignalResponse_ListsTruncated(t *testing.T) {
	response := `{"score": 0.5, "reasons": ["r1","r2","r3","r4","r5","r6","r7","r8","r9","r10","r11","r12"], "patterns": []}`

	result := parseSignalResponse(response, "openai", zap.NewNop())

	assert.Len(t, result.Reasons, maxListLength)
}

func TestAnalyzer_NotConfigured(t *testing.T) {
	analyzer := NewAnalyzer(nil, "gpt-4", 1000, 0.1, 0.9, 4096, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))

	result := analyzer.Analyze(context.Background(), &core.AnalysisRequest{EmailText: "hello"})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, []string{"openai analyzer not configured"}, result.Reasons)
}
