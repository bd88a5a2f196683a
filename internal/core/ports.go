package core

import (
	"context"
)

// ContentAnalyzer is one external LLM-backed content analysis source.
// Implementations apply their own timeout and never fail past this
// boundary: transport errors, missing credentials and malformed
// responses all degrade to a zero-signal result with a diagnostic
// reason.
type ContentAnalyzer interface {
	// Name identifies the analyzer in logs, explanations and reports
	Name() string

	// Analyze scores an email's content for phishing indicators
	Analyze(ctx context.Context, req *AnalysisRequest) SignalResult
}

// URLReputationChecker queries a threat-intelligence provider for every
// link in the email. A provider error for one link must not abort the
// remaining links.
type URLReputationChecker interface {
	// Name identifies the checker in logs, explanations and reports
	Name() string

	// Check scores the given links against known threat lists
	Check(ctx context.Context, links []string) SignalResult
}

// RuleEvaluator is the deterministic heuristic signal source. It never
// errors and performs no I/O.
type RuleEvaluator interface {
	Evaluate(text, sender, subject string, links []string) SignalResult
}
