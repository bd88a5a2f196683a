package bedrock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractResponseText(t *testing.T) {
	tests := []struct {
		name     string
		modelID  string
		body     string
		expected string
	}{
		{
			name:     "Claude completion envelope",
			modelID:  "anthropic.claude-v2",
			body:     `{"completion": "{\"score\": 0.8}"}`,
			expected: `{"score": 0.8}`,
		},
		{
			name:     "Titan results envelope",
			modelID:  "amazon.titan-text-express-v1",
			body:     `{"results": [{"outputText": "titan says hi"}]}`,
			expected: "titan says hi",
		},
		{
			name:     "Generic output field",
			modelID:  "mistral.mistral-7b",
			body:     `{"output": "generic output"}`,
			expected: "generic output",
		},
		{
			name:     "Generic text field",
			modelID:  "mistral.mistral-7b",
			body:     `{"text": "generic text"}`,
			expected: "generic text",
		},
		{
			name:     "Generic falls through to raw body",
			modelID:  "mistral.mistral-7b",
			body:     `{"something_else": "x"}`,
			expected: `{"something_else": "x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Analyzer{modelID: tt.modelID}
			got, err := a.extractResponseText([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractResponseText_EmptyTitanResults(t *testing.T) {
	a := &Analyzer{modelID: "amazon.titan-text-express-v1"}
	_, err := a.extractResponseText([]byte(`{"results": []}`))
	assert.Error(t, err)
}

func TestParseSignalResponse_RoundTripThroughEnvelope(t *testing.T) {
	a := &Analyzer{modelID: "anthropic.claude-v2"}
	body := `{"completion": "{\"score\": 0.7, \"reasons\": [\"lure link\"], \"patterns\": [\"suspicious_domain\"]}"}`

	text, err := a.extractResponseText([]byte(body))
	require.NoError(t, err)

	result := parseSignalResponse(text, "bedrock", zap.NewNop())
	assert.InDelta(t, 0.7, result.Score, 0.001)
	assert.Equal(t, []string{"lure link"}, result.Reasons)
}
