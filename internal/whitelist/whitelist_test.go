package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{"gov.in", "Example.COM "}, zap.NewNop())

	tests := []struct {
		name     string
		sender   string
		expected bool
	}{
		{name: "Exact domain match", sender: "notices@gov.in", expected: true},
		{name: "Subdomain match", sender: "alerts@incometax.gov.in", expected: true},
		{name: "Bare domain input", sender: "gov.in", expected: true},
		{name: "Display name form", sender: "Tax Office <notices@gov.in>", expected: true},
		{name: "Case and whitespace normalized at construction", sender: "user@example.com", expected: true},
		{name: "Suffix without dot boundary", sender: "user@notgov.in", expected: false},
		{name: "Unlisted domain", sender: "user@phish.example", expected: false},
		{name: "Empty sender", sender: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.IsWhitelisted(tt.sender))
		})
	}
}

func TestChecker_EmptyWhitelist(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsWhitelisted("anyone@anywhere.example"))
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name     string
		sender   string
		expected string
	}{
		{name: "Plain address", sender: "user@host.example", expected: "host.example"},
		{name: "Display name form", sender: "Some One <User@Host.Example>", expected: "host.example"},
		{name: "Bare domain", sender: "host.example", expected: "host.example"},
		{name: "Empty", sender: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Domain(tt.sender))
		})
	}
}

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "user", LocalPart("user@host.example"))
	assert.Equal(t, "user", LocalPart("Name <user@host.example>"))
	assert.Equal(t, "", LocalPart("host.example"))
}
