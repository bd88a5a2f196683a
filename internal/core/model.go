package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrEmptyEmail is returned when an analysis request carries no email text
var ErrEmptyEmail = errors.New("email text cannot be empty")

// Result is the binary classification outcome
type Result string

const (
	ResultPhishing Result = "phishing"
	ResultSafe     Result = "safe"
)

// RiskLevel grades how dangerous a verdict is
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PatternTag is a categorical label for a detected attack technique
type PatternTag string

const (
	PatternSocialEngineering    PatternTag = "social_engineering"
	PatternImpersonation        PatternTag = "impersonation"
	PatternBrandSpoofing        PatternTag = "brand_spoofing"
	PatternTracking             PatternTag = "tracking"
	PatternCredentialHarvesting PatternTag = "credential_harvesting"
	PatternDomainSpoofing       PatternTag = "domain_spoofing"
	PatternSuspiciousDomain     PatternTag = "suspicious_domain"
	PatternURLShortener         PatternTag = "url_shortener"
	PatternIPAddressLink        PatternTag = "ip_address_link"
	PatternUrgencyLanguage      PatternTag = "urgency_language"
	PatternGrammarIssues        PatternTag = "grammar_issues"
	PatternSafeBrowsingThreat   PatternTag = "safe_browsing_threat"
	PatternAIDetectedFallback   PatternTag = "ai_detected_fallback"
)

// knownPatterns is the closed set of tags accepted from external
// analyzers
var knownPatterns = map[PatternTag]bool{
	PatternSocialEngineering:    true,
	PatternImpersonation:        true,
	PatternBrandSpoofing:        true,
	PatternTracking:             true,
	PatternCredentialHarvesting: true,
	PatternDomainSpoofing:       true,
	PatternSuspiciousDomain:     true,
	PatternURLShortener:         true,
	PatternIPAddressLink:        true,
	PatternUrgencyLanguage:      true,
	PatternGrammarIssues:        true,
	PatternSafeBrowsingThreat:   true,
	PatternAIDetectedFallback:   true,
}

// CanonicalPattern normalizes an externally-supplied pattern token and
// reports whether it is a known tag
func CanonicalPattern(s string) (PatternTag, bool) {
	tag := PatternTag(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	return tag, knownPatterns[tag]
}

// AnalysisRequest represents one email submitted for classification.
// EmailText is required; everything else is optional context.
type AnalysisRequest struct {
	EmailText   string
	Sender      string
	Subject     string
	Links       []string
	RequesterID string
}

// Validate checks the request before any signal evaluation happens
func (r *AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.EmailText) == "" {
		return ErrEmptyEmail
	}
	return nil
}

// SignalResult is the uniform contract every signal source produces: a
// score in [0,1] plus human-readable reasons and machine-readable
// pattern tags. A zero score with empty reasons and patterns is the
// canonical "no opinion" value used when an adapter degrades.
type SignalResult struct {
	Score    float64
	Reasons  []string
	Patterns []PatternTag
}

// ZeroSignal returns a degraded no-opinion result carrying an optional
// diagnostic reason
func ZeroSignal(reason string) SignalResult {
	if reason == "" {
		return SignalResult{Reasons: []string{}, Patterns: []PatternTag{}}
	}
	return SignalResult{Reasons: []string{reason}, Patterns: []PatternTag{}}
}

// Clamped returns a copy with the score forced into [0,1] and nil
// slices replaced with empty ones
func (s SignalResult) Clamped() SignalResult {
	s.Score = Clamp01(s.Score)
	if s.Reasons == nil {
		s.Reasons = []string{}
	}
	if s.Patterns == nil {
		s.Patterns = []PatternTag{}
	}
	return s
}

// FeedbackRecord is one historical user correction, read from the
// caller's feedback store. The engine only ever sees a bounded recent
// window of these.
type FeedbackRecord struct {
	OriginalResult Result
	UserCorrection string // "correct" or "incorrect"
	ReasonText     string
	CreatedAt      time.Time
}

// IsIncorrect reports whether the user marked the original verdict wrong
func (f FeedbackRecord) IsIncorrect() bool {
	return f.UserCorrection == "incorrect"
}

// HistoryAdjustment is the personalization offset derived from a user's
// feedback window. Never persisted.
type HistoryAdjustment struct {
	Offset  float64
	Reasons []string
}

// SignalScore pairs a signal source name with the score it produced.
// Kept on the verdict for explanation rendering and host-side reporting.
type SignalScore struct {
	Name  string
	Score float64
}

// Explanation is the human-readable rendering of a verdict
type Explanation struct {
	Summary           string
	TechnicalDetails  []string
	ConfidenceFactors []string
}

// Verdict is the immutable output of one evaluation
type Verdict struct {
	ID               string
	Result           Result
	Confidence       float64
	RiskLevel        RiskLevel
	FusedScore       float64
	Reasons          []string
	DetectedPatterns []PatternTag
	Signals          []SignalScore
	Explanation      Explanation
	AnalyzedAt       time.Time
}

// IsPhishing reports whether the verdict classified the email as phishing
func (v *Verdict) IsPhishing() bool {
	return v.Result == ResultPhishing
}

// Clamp01 forces a score into the [0,1] range
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round2 rounds a confidence value to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
