package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{name: "Identical strings", a: "paypal", b: "paypal", expected: 0},
		{name: "Single substitution", a: "paypal", b: "paypa1", expected: 1},
		{name: "Single insertion", a: "amazon", b: "amazzon", expected: 1},
		{name: "Empty left side", a: "", b: "google", expected: 6},
		{name: "Empty right side", a: "google", b: "", expected: 6},
		{name: "Transposition counts as two edits", a: "microsoft", b: "microsfot", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, levenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestDomainSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{name: "Identical domains", a: "paypal.com", b: "paypal.com", expected: 1.0},
		{name: "Single character swap", a: "paypa1.com", b: "paypal.com", expected: 0.9},
		{name: "Both empty", a: "", b: "", expected: 1.0},
		{name: "One empty", a: "", b: "netflix.com", expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, domainSimilarity(tt.a, tt.b), 0.001)
		})
	}
}

func TestDomainSimilarity_LookAlikeWindow(t *testing.T) {
	// A near-miss domain lands inside the (threshold, 1.0) window while
	// an unrelated domain falls well below it
	cfg := DefaultConfig()

	nearMiss := domainSimilarity("paypa1.com", "paypal.com")
	assert.Greater(t, nearMiss, cfg.LookAlikeThreshold)
	assert.Less(t, nearMiss, 1.0)

	unrelated := domainSimilarity("randomshop.biz", "paypal.com")
	assert.Less(t, unrelated, cfg.LookAlikeThreshold)
}
