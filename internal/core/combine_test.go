package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func sig(name string, kind SignalKind, score float64, patterns ...PatternTag) signalInput {
	return signalInput{
		Name: name,
		Kind: kind,
		Result: SignalResult{
			Score:    score,
			Reasons:  []string{},
			Patterns: patterns,
		},
	}
}

func TestCombine_AllZeroSignals(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 0),
		sig("openai", KindAnalyzer, 0),
		sig("url_reputation", KindURLReputation, 0),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	assert.Equal(t, ResultSafe, out.Result)
	assert.Equal(t, 0.5, out.Confidence)
	assert.Equal(t, RiskLow, out.RiskLevel)
	assert.Equal(t, 0.0, out.FinalScore)
	assert.Equal(t, 0, out.ActiveCount)
}

func TestCombine_URLOverride(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 0),
		sig("url_reputation", KindURLReputation, 0.9, PatternSafeBrowsingThreat),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	// A confirmed malicious URL classifies as phishing regardless of the
	// blended score, at high risk
	assert.Equal(t, ResultPhishing, out.Result)
	assert.Equal(t, RiskHigh, out.RiskLevel)
	assert.Equal(t, cfg.URLLoweredThreshold, out.Threshold)
}

func TestCombine_CriticalPatternOverride(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 0.2, PatternDomainSpoofing),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	assert.Equal(t, ResultPhishing, out.Result)
	assert.Equal(t, RiskHigh, out.RiskLevel)
	assert.Equal(t, cfg.CriticalLoweredThreshold, out.Threshold)
}

func TestCombine_ConsensusBoost(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 0.7),
		sig("openai", KindAnalyzer, 0.7),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	// Two corroborating high signals earn the consensus boost on top of
	// the weighted base
	expected := 0.7*cfg.RuleWeight + 0.7*cfg.AnalyzerWeight + cfg.ConsensusBoost
	assert.InDelta(t, expected, out.FinalScore, 0.001)
	assert.Equal(t, 2, out.ActiveCount)
}

func TestCombine_SingleOutlierPenalty(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 0.8),
		sig("openai", KindAnalyzer, 0.15),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	expected := 0.8*cfg.RuleWeight + 0.15*cfg.AnalyzerWeight - cfg.OutlierPenalty
	assert.InDelta(t, expected, out.FinalScore, 0.001)
}

func TestCombine_SingleWeakSignalRaisesThreshold(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("openai", KindAnalyzer, 0.55),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	assert.Equal(t, cfg.SingleSignalRaisedThreshold, out.Threshold)
	assert.Equal(t, ResultSafe, out.Result)
	// Confidence floor for one-signal verdicts
	assert.Equal(t, cfg.MinSingleConfidence, out.Confidence)
}

func TestCombine_AgreementRaisesConfidence(t *testing.T) {
	cfg := DefaultFusionConfig()

	agreeing := combine(cfg, []signalInput{
		sig("rules", KindRules, 0.9),
		sig("openai", KindAnalyzer, 0.9),
		sig("url_reputation", KindURLReputation, 0.9, PatternSafeBrowsingThreat),
	}, HistoryAdjustment{}, zap.NewNop())

	disagreeing := combine(cfg, []signalInput{
		sig("rules", KindRules, 0.9),
		sig("openai", KindAnalyzer, 0.2),
		sig("url_reputation", KindURLReputation, 0.55, PatternSafeBrowsingThreat),
	}, HistoryAdjustment{}, zap.NewNop())

	assert.Equal(t, ResultPhishing, agreeing.Result)
	assert.Greater(t, agreeing.Confidence, disagreeing.Confidence)
}

func TestCombine_ScoreAndConfidenceStayBounded(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 1.0, PatternDomainSpoofing, PatternCredentialHarvesting, PatternUrgencyLanguage),
		sig("openai", KindAnalyzer, 1.0),
		sig("gemini", KindAnalyzer, 1.0),
		sig("url_reputation", KindURLReputation, 1.0, PatternSafeBrowsingThreat),
	}

	out := combine(cfg, signals, HistoryAdjustment{Offset: 0.2}, zap.NewNop())

	assert.LessOrEqual(t, out.FinalScore, 1.0)
	assert.LessOrEqual(t, out.Confidence, cfg.MaxConfidence)
	assert.Equal(t, ResultPhishing, out.Result)
	assert.Equal(t, RiskHigh, out.RiskLevel)
}

func TestCombine_HistoryOffsetShiftsVerdict(t *testing.T) {
	cfg := DefaultFusionConfig()
	marginal := []signalInput{
		sig("rules", KindRules, 0.75),
		sig("openai", KindAnalyzer, 0.65),
	}

	base := combine(cfg, marginal, HistoryAdjustment{}, zap.NewNop())
	raised := combine(cfg, marginal, HistoryAdjustment{Offset: 0.15}, zap.NewNop())

	assert.Equal(t, ResultSafe, base.Result)
	assert.Equal(t, ResultPhishing, raised.Result)
}

func TestCombine_ReasonsDedupedAndCapped(t *testing.T) {
	cfg := DefaultFusionConfig()
	cfg.MaxReasons = 3

	in := []signalInput{
		{Name: "rules", Kind: KindRules, Result: SignalResult{
			Score:   0.4,
			Reasons: []string{"a", "b", "a", "c", "d"},
		}},
	}

	out := combine(cfg, in, HistoryAdjustment{Reasons: []string{"b", "e"}}, zap.NewNop())

	assert.Equal(t, []string{"a", "b", "c"}, out.Reasons)
}

func TestCombine_PatternsDedupedAcrossSources(t *testing.T) {
	cfg := DefaultFusionConfig()
	signals := []signalInput{
		sig("rules", KindRules, 0.4, PatternUrgencyLanguage, PatternBrandSpoofing),
		sig("openai", KindAnalyzer, 0.4, PatternBrandSpoofing, PatternSocialEngineering),
	}

	out := combine(cfg, signals, HistoryAdjustment{}, zap.NewNop())

	assert.Equal(t, []PatternTag{PatternUrgencyLanguage, PatternBrandSpoofing, PatternSocialEngineering}, out.Patterns)
}

func TestCombine_MediumPatternNeedsTwoPatterns(t *testing.T) {
	cfg := DefaultFusionConfig()

	single := combine(cfg, []signalInput{
		sig("rules", KindRules, 0.4, PatternUrgencyLanguage),
	}, HistoryAdjustment{}, zap.NewNop())
	assert.InDelta(t, 0.4*cfg.RuleWeight, single.FinalScore, 0.001)

	double := combine(cfg, []signalInput{
		sig("rules", KindRules, 0.4, PatternUrgencyLanguage, PatternTracking),
	}, HistoryAdjustment{}, zap.NewNop())
	assert.InDelta(t, 0.4*cfg.RuleWeight+cfg.MediumRiskIncrement, double.FinalScore, 0.001)
}
