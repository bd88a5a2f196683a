package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("Short text untouched", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 100))
	})

	t.Run("Zero max size disables truncation", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 0))
	})

	t.Run("Long text truncated with marker", func(t *testing.T) {
		long := strings.Repeat("a", 200)
		got := tp.TruncateText(long, 50)
		assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 50)))
		assert.Contains(t, got, "Content truncated")
	})

	t.Run("Never splits a multibyte rune", func(t *testing.T) {
		// "é" is two bytes; cutting at 3 would land mid-rune
		got := tp.TruncateText("aéé", 3)
		assert.True(t, strings.HasPrefix(got, "aé"))
		assert.NotContains(t, got, "�")
	})
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))

	dirty := "bad\xffbyte"
	got := tp.SanitizeUTF8(dirty)
	assert.Equal(t, "badbyte", got)
}

func TestNormalizeForMatching(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Lowercases", input: "PayPal Account", expected: "paypal account"},
		{name: "Fullwidth characters folded", input: "ＰａｙＰａｌ", expected: "paypal"},
		{name: "Empty input", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeForMatching(tt.input))
		})
	}
}
