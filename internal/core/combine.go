package core

import (
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

// SignalKind distinguishes the three classes of signal source for
// weighting and override purposes
type SignalKind int

const (
	KindRules SignalKind = iota
	KindAnalyzer
	KindURLReputation
)

// signalInput is one settled signal entering the combination step
type signalInput struct {
	Name   string
	Kind   SignalKind
	Result SignalResult
}

// FusionConfig externalizes every weight, boost and threshold of the
// combination algorithm so tuning never requires structural changes.
type FusionConfig struct {
	// Source weights for the blended base score. URL reputation is
	// weighted highest; the weights deliberately sum past 1.0 and rely
	// on the clamp.
	RuleWeight     float64
	AnalyzerWeight float64
	URLWeight      float64

	// Consensus bands over per-signal scores
	ActiveThreshold float64
	MediumThreshold float64
	HighThreshold   float64
	ConsensusBoost  float64
	OutlierPenalty  float64

	// Pattern severity tiers and their score increments. The medium
	// increment only applies when at least two distinct patterns are
	// present.
	CriticalPatterns  []PatternTag
	HighRiskPatterns  []PatternTag
	MediumRiskPatterns []PatternTag
	CriticalIncrement  float64
	HighRiskIncrement  float64
	MediumRiskIncrement float64

	// Adaptive decision threshold
	DefaultThreshold            float64
	URLLoweredThreshold         float64
	CriticalLoweredThreshold    float64
	HighRiskLoweredThreshold    float64
	SingleSignalRaisedThreshold float64
	SingleSignalWeakScore       float64
	URLOverrideScore            float64

	// Confidence calibration
	MinSingleConfidence    float64
	AgreementBonusMax      float64
	AgreementVarianceScale float64
	URLConfidenceBoost     float64
	MaxConfidence          float64

	// Risk banding
	MediumRiskScore float64
	LowRiskScore    float64

	// Presentation caps
	MaxReasons  int
	MaxPatterns int
}

// DefaultFusionConfig returns the tuned combination defaults. These
// came out of iterative tuning against labelled samples, not a derived
// model; retune via configuration rather than editing code.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		RuleWeight:     0.30,
		AnalyzerWeight: 0.25,
		URLWeight:      0.35,

		ActiveThreshold: 0.1,
		MediumThreshold: 0.3,
		HighThreshold:   0.6,
		ConsensusBoost:  0.08,
		OutlierPenalty:  0.05,

		CriticalPatterns:   []PatternTag{PatternSafeBrowsingThreat, PatternDomainSpoofing},
		HighRiskPatterns:   []PatternTag{PatternBrandSpoofing, PatternImpersonation, PatternCredentialHarvesting},
		MediumRiskPatterns: []PatternTag{PatternSocialEngineering, PatternUrgencyLanguage, PatternTracking},
		CriticalIncrement:  0.15,
		HighRiskIncrement:  0.10,
		MediumRiskIncrement: 0.05,

		DefaultThreshold:            0.50,
		URLLoweredThreshold:         0.35,
		CriticalLoweredThreshold:    0.40,
		HighRiskLoweredThreshold:    0.45,
		SingleSignalRaisedThreshold: 0.60,
		SingleSignalWeakScore:       0.7,
		URLOverrideScore:            0.5,

		MinSingleConfidence:    0.60,
		AgreementBonusMax:      0.10,
		AgreementVarianceScale: 0.09,
		URLConfidenceBoost:     0.05,
		MaxConfidence:          0.99,

		MediumRiskScore: 0.6,
		LowRiskScore:    0.3,

		MaxReasons:  15,
		MaxPatterns: 12,
	}
}

// combined is the outcome of the fusion algorithm before it is wrapped
// into a Verdict
type combined struct {
	Result      Result
	Confidence  float64
	RiskLevel   RiskLevel
	FinalScore  float64
	Threshold   float64
	Reasons     []string
	Patterns    []PatternTag
	Signals     []SignalScore
	ActiveCount int
}

// combine merges every settled signal plus the history adjustment into
// one verdict. Pure apart from debug logging.
func combine(cfg FusionConfig, signals []signalInput, adj HistoryAdjustment, logger *zap.Logger) combined {
	// Step 1: weighted base score
	base := 0.0
	scores := make([]SignalScore, 0, len(signals))
	urlScore := 0.0
	for _, sig := range signals {
		w := cfg.AnalyzerWeight
		switch sig.Kind {
		case KindRules:
			w = cfg.RuleWeight
		case KindURLReputation:
			w = cfg.URLWeight
			urlScore = sig.Result.Score
		}
		base += sig.Result.Score * w
		scores = append(scores, SignalScore{Name: sig.Name, Score: sig.Result.Score})
	}

	// Step 2: personalization offset; the intermediate value may leave
	// [0,1] until the consensus clamp below
	base += adj.Offset

	// Step 3: consensus among active signals
	active := make([]float64, 0, len(signals))
	high, medium := 0, 0
	for _, sig := range signals {
		s := sig.Result.Score
		if s <= cfg.ActiveThreshold {
			continue
		}
		active = append(active, s)
		if s > cfg.HighThreshold {
			high++
		} else if s > cfg.MediumThreshold {
			medium++
		}
	}
	consensus := "none"
	if len(active) >= 2 {
		if high >= 2 {
			base += cfg.ConsensusBoost
			consensus = "corroborated"
		} else if high == 1 && medium == 0 {
			base -= cfg.OutlierPenalty
			consensus = "single_outlier"
		}
	}
	combinedScore := Clamp01(base)

	// Step 4: pattern severity adjustment
	patterns := dedupPatterns(signals)
	hasCritical := containsAnyPattern(patterns, cfg.CriticalPatterns)
	hasHighRisk := containsAnyPattern(patterns, cfg.HighRiskPatterns)
	hasMediumRisk := containsAnyPattern(patterns, cfg.MediumRiskPatterns)

	finalScore := combinedScore
	if hasCritical {
		finalScore += cfg.CriticalIncrement
	}
	if hasHighRisk {
		finalScore += cfg.HighRiskIncrement
	}
	if hasMediumRisk && len(patterns) >= 2 {
		finalScore += cfg.MediumRiskIncrement
	}
	finalScore = Clamp01(finalScore)

	// Step 5: adaptive threshold
	threshold := cfg.DefaultThreshold
	switch {
	case urlScore > cfg.URLOverrideScore:
		threshold = cfg.URLLoweredThreshold
	case hasCritical:
		threshold = cfg.CriticalLoweredThreshold
	case hasHighRisk && len(active) >= 2:
		threshold = cfg.HighRiskLoweredThreshold
	case len(active) == 1 && active[0] < cfg.SingleSignalWeakScore:
		threshold = cfg.SingleSignalRaisedThreshold
	}

	// Step 6: verdict. A confirmed malicious URL or a critical pattern
	// classifies as phishing no matter how low the blended score is.
	urlOverride := urlScore > cfg.URLOverrideScore
	isPhishing := finalScore > threshold || hasCritical || urlOverride

	result := ResultSafe
	if isPhishing {
		result = ResultPhishing
	}

	// Step 7: confidence calibration from cross-signal agreement
	confidence := calibrateConfidence(cfg, active, finalScore, isPhishing, urlOverride)

	// Step 8: risk level; ties resolve toward caution
	risk := RiskMedium
	switch {
	case urlOverride || hasCritical:
		risk = RiskHigh
	case hasHighRisk || finalScore > cfg.MediumRiskScore:
		risk = RiskMedium
	case finalScore < cfg.LowRiskScore && !hasMediumRisk:
		risk = RiskLow
	}

	if logger != nil {
		logger.Debug("Combined signals into verdict",
			zap.Float64("base_score", base),
			zap.Float64("combined_score", combinedScore),
			zap.Float64("final_score", finalScore),
			zap.Float64("threshold", threshold),
			zap.String("consensus", consensus),
			zap.Int("active_signals", len(active)),
			zap.Float64("url_score", urlScore),
			zap.Float64("history_offset", adj.Offset),
			zap.Bool("critical_patterns", hasCritical),
			zap.String("result", string(result)))
	}

	return combined{
		Result:      result,
		Confidence:  Round2(confidence),
		RiskLevel:   risk,
		FinalScore:  finalScore,
		Threshold:   threshold,
		Reasons:     collectReasons(cfg, signals, adj),
		Patterns:    capPatterns(patterns, cfg.MaxPatterns),
		Signals:     scores,
		ActiveCount: len(active),
	}
}

// calibrateConfidence turns signal agreement into a confidence value,
// never reporting absolute certainty
func calibrateConfidence(cfg FusionConfig, active []float64, finalScore float64, isPhishing, urlOverride bool) float64 {
	switch len(active) {
	case 0:
		// No signal had an opinion: stated uncertainty
		return 0.5
	case 1:
		conf := active[0]
		if !isPhishing {
			conf = 1 - conf
		}
		if conf < cfg.MinSingleConfidence {
			conf = cfg.MinSingleConfidence
		}
		if conf > cfg.MaxConfidence {
			conf = cfg.MaxConfidence
		}
		return conf
	}

	variance, err := stats.PopulationVariance(stats.Float64Data(active))
	if err != nil {
		variance = 0
	}
	agreement := 1 - variance/cfg.AgreementVarianceScale
	if agreement < 0 {
		agreement = 0
	}

	conf := finalScore
	if !isPhishing {
		conf = 1 - finalScore
	}
	conf += cfg.AgreementBonusMax * agreement
	if urlOverride {
		conf += cfg.URLConfidenceBoost
	}
	if conf > cfg.MaxConfidence {
		conf = cfg.MaxConfidence
	}
	return Clamp01(conf)
}

// dedupPatterns unions every source's patterns in discovery order
func dedupPatterns(signals []signalInput) []PatternTag {
	seen := make(map[PatternTag]bool)
	out := make([]PatternTag, 0)
	for _, sig := range signals {
		for _, p := range sig.Result.Patterns {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func capPatterns(patterns []PatternTag, max int) []PatternTag {
	if max > 0 && len(patterns) > max {
		return patterns[:max]
	}
	return patterns
}

// collectReasons merges per-signal reasons and history reasons in
// discovery order, deduplicated and capped
func collectReasons(cfg FusionConfig, signals []signalInput, adj HistoryAdjustment) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	add := func(r string) {
		if r == "" || seen[r] {
			return
		}
		if cfg.MaxReasons > 0 && len(out) >= cfg.MaxReasons {
			return
		}
		seen[r] = true
		out = append(out, r)
	}
	for _, sig := range signals {
		for _, r := range sig.Result.Reasons {
			add(r)
		}
	}
	for _, r := range adj.Reasons {
		add(r)
	}
	return out
}

func containsAnyPattern(patterns []PatternTag, set []PatternTag) bool {
	for _, p := range patterns {
		for _, s := range set {
			if p == s {
				return true
			}
		}
	}
	return false
}
