package rules

import (
	"testing"

	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, whitelisted ...string) *Engine {
	t.Helper()
	wl := whitelist.NewChecker(whitelisted, zap.NewNop())
	return NewEngine(DefaultConfig(), wl, zap.NewNop())
}

func hasPattern(result core.SignalResult, tag core.PatternTag) bool {
	for _, p := range result.Patterns {
		if p == tag {
			return true
		}
	}
	return false
}

func TestEngine_Evaluate_BrandLookAlikeSender(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Evaluate(
		"Dear Valued Customer, your PayPal account has been suspended. "+
			"Verify your account immediately: http://paypal-secure-login.net/verify",
		"security@paypal-secure-login.net",
		"Urgent: Your PayPal account has been suspended",
		[]string{"http://paypal-secure-login.net/verify"},
	)

	assert.GreaterOrEqual(t, result.Score, 0.8)
	assert.True(t, hasPattern(result, core.PatternDomainSpoofing))
	assert.True(t, hasPattern(result, core.PatternBrandSpoofing))
	assert.True(t, hasPattern(result, core.PatternUrgencyLanguage))
	assert.True(t, hasPattern(result, core.PatternCredentialHarvesting))
	assert.NotEmpty(t, result.Reasons)
}

func TestEngine_Evaluate_WhitelistedSenderNearZero(t *testing.T) {
	engine := newTestEngine(t, "gov.in")

	result := engine.Evaluate(
		"Urgent action required: please file your income tax return before the deadline.",
		"notices@gov.in",
		"Income tax filing deadline",
		nil,
	)

	// The whitelist discount swallows the halved urgency weight
	assert.Equal(t, 0.0, result.Score)
}

func TestEngine_Evaluate_CleanEmail(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Evaluate(
		"Hi Bob, attached are the meeting notes from Tuesday. See you tomorrow.",
		"alice@colleague.io",
		"Meeting notes",
		nil,
	)

	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.Patterns)
}

func TestEngine_Evaluate_WhitelistNeverRaisesScore(t *testing.T) {
	text := "Urgent action required: verify your account within 24 hours. " +
		"Click here to verify your identity."
	sender := "support@trusted.example"
	subject := "Action required"
	links := []string{"https://trusted.example/account/verify"}

	plain := newTestEngine(t).Evaluate(text, sender, subject, links)
	trusted := newTestEngine(t, "trusted.example").Evaluate(text, sender, subject, links)

	assert.LessOrEqual(t, trusted.Score, plain.Score)
}

func TestEngine_Evaluate_GreetingUpgrades(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name      string
		text      string
		sender    string
		wantScore float64
		wantTags  []core.PatternTag
	}{
		{
			name:      "Synthetic placeholder name",
			text:      "Dear John Doe, we noticed a problem with your order.",
			sender:    "shop@store.example",
			wantScore: DefaultConfig().GreetingUpgradedScore,
			wantTags:  []core.PatternTag{core.PatternSocialEngineering, core.PatternImpersonation},
		},
		{
			name:      "Name does not match sender mailbox",
			text:      "Dear Maria Gonzalez, thank you for your loyalty.",
			sender:    "newsletter@store.example",
			wantScore: DefaultConfig().GreetingUpgradedScore,
			wantTags:  []core.PatternTag{core.PatternSocialEngineering, core.PatternImpersonation},
		},
		{
			name:      "Name matches sender mailbox",
			text:      "Dear Maria Gonzalez, thank you for your loyalty.",
			sender:    "maria.gonzalez@store.example",
			wantScore: DefaultConfig().GreetingDowngradedScore,
			wantTags:  []core.PatternTag{core.PatternSocialEngineering},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(tt.text, tt.sender, "", nil)
			assert.InDelta(t, tt.wantScore, result.Score, 0.001)
			assert.Equal(t, tt.wantTags, result.Patterns)
		})
	}
}

func TestEngine_Evaluate_ReplyToDecoy(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Evaluate(
		"Please get back to us as soon as possible. Reply-To: <support@mailinator.com>",
		"info@company.example",
		"",
		nil,
	)

	assert.InDelta(t, DefaultConfig().ReplyToDecoyScore, result.Score, 0.001)
	assert.True(t, hasPattern(result, core.PatternImpersonation))
}

func TestEngine_Evaluate_LinkChecks(t *testing.T) {
	engine := newTestEngine(t)
	cfg := DefaultConfig()

	result := engine.Evaluate(
		"See the attached resources.",
		"mailer@lists.example",
		"",
		[]string{
			"http://bit.ly/x1",
			"http://192.168.0.1/login",
			"https://secure-login-verify.example.net/account",
		},
	)

	// One shortener, one IP link, two links with credential-lure tokens
	expected := cfg.ShortenerScore + cfg.IPLinkScore + 2*cfg.SuspiciousLinkScore
	assert.InDelta(t, expected, result.Score, 0.001)
	assert.True(t, hasPattern(result, core.PatternURLShortener))
	assert.True(t, hasPattern(result, core.PatternIPAddressLink))
	assert.True(t, hasPattern(result, core.PatternSuspiciousDomain))
}

func TestEngine_Evaluate_UrgencyCapped(t *testing.T) {
	engine := newTestEngine(t)
	cfg := DefaultConfig()

	// Stacks far past the cap on raw weights
	result := engine.Evaluate(
		"URGENT ACTION REQUIRED. Act now! Your account has been suspended. "+
			"This is the final notice. It expires today. Last chance. "+
			"Failure to respond within 24 hours will close your account.",
		"alerts@random.example",
		"",
		nil,
	)

	assert.InDelta(t, cfg.UrgencyCap, result.Score, 0.001)
	assert.Equal(t, []core.PatternTag{core.PatternUrgencyLanguage}, result.Patterns)
}

func TestEngine_Evaluate_SenderSpoof(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Evaluate(
		"Hello, please see the update below.",
		"alerts@paypal.com.evil.net",
		"",
		nil,
	)

	assert.InDelta(t, DefaultConfig().SenderSpoofScore, result.Score, 0.001)
	assert.True(t, hasPattern(result, core.PatternDomainSpoofing))
}

func TestEngine_Evaluate_IdentityInconsistency(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Evaluate(
		"This is the IT help desk. Your mailbox migration is pending.",
		"helpdesk2024@gmail.com",
		"",
		nil,
	)

	assert.True(t, hasPattern(result, core.PatternImpersonation))
	assert.GreaterOrEqual(t, result.Score, DefaultConfig().InconsistencyScore)
}

func TestEngine_Evaluate_GrammarHeuristic(t *testing.T) {
	engine := newTestEngine(t)

	result := engine.Evaluate(
		"You will recieve your acount statement untill further notice.",
		"noreply@random.example",
		"",
		nil,
	)

	assert.True(t, hasPattern(result, core.PatternGrammarIssues))
}

func TestEngine_Evaluate_TrackingPixelFirstMatchOnly(t *testing.T) {
	engine := newTestEngine(t)
	cfg := DefaultConfig()

	result := engine.Evaluate(
		`<img src="a.gif" width="1" height="1"> and also https://x.example/pixel.gif?id=1 1x1.png`,
		"promo@shop.example",
		"",
		nil,
	)

	assert.InDelta(t, cfg.TrackingScore, result.Score, 0.001)
	assert.Equal(t, []core.PatternTag{core.PatternTracking}, result.Patterns)
}

func TestEngine_Evaluate_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	text := "Dear Valued Customer, verify your account now: http://bit.ly/x"
	links := []string{"http://bit.ly/x"}

	first := engine.Evaluate(text, "a@b.example", "Verify", links)
	second := engine.Evaluate(text, "a@b.example", "Verify", links)

	assert.Equal(t, first, second)
}
