package core

import (
	"fmt"
	"strings"
)

// patternLabels maps machine tags onto the human wording used in
// explanations
var patternLabels = map[PatternTag]string{
	PatternSocialEngineering:    "social engineering",
	PatternImpersonation:        "sender impersonation",
	PatternBrandSpoofing:        "brand spoofing",
	PatternTracking:             "tracking pixels",
	PatternCredentialHarvesting: "credential harvesting",
	PatternDomainSpoofing:       "domain spoofing",
	PatternSuspiciousDomain:     "suspicious link domain",
	PatternURLShortener:         "shortened links",
	PatternIPAddressLink:        "raw IP address links",
	PatternUrgencyLanguage:      "urgency pressure tactics",
	PatternGrammarIssues:        "unusual spelling or grammar",
	PatternSafeBrowsingThreat:   "known malicious URL",
	PatternAIDetectedFallback:   "partial AI analysis",
}

const (
	explanationMinorScore = 0.1
	explanationMaxDetails = 8
	explanationMaxFactors = 4
)

// BuildExplanation renders a verdict into a tiered summary, technical
// detail lines and confidence-factor statements. Pure formatter.
func BuildExplanation(result Result, confidence float64, signals []SignalScore, patterns []PatternTag, reasons []string, activeSignals int) Explanation {
	return Explanation{
		Summary:           summaryFor(result, confidence),
		TechnicalDetails:  technicalDetails(signals, patterns),
		ConfidenceFactors: confidenceFactors(confidence, activeSignals, len(reasons)),
	}
}

// summaryFor picks the headline wording from the (result, confidence)
// band
func summaryFor(result Result, confidence float64) string {
	if result == ResultPhishing {
		switch {
		case confidence > 0.8:
			return "This email is very likely a phishing attempt. Do not click any links or reply."
		case confidence > 0.6:
			return "This email shows strong signs of phishing. Treat it with caution and verify the sender through another channel."
		default:
			return "This email has some characteristics of phishing. Be careful with any links or requests it contains."
		}
	}
	switch {
	case confidence > 0.8:
		return "This email appears legitimate. No significant phishing indicators were found."
	case confidence > 0.6:
		return "This email is probably safe, though a few minor signals were noted."
	default:
		return "No clear phishing indicators were found, but the analysis had limited signal coverage. Stay cautious."
	}
}

// technicalDetails surfaces each signal that carried real weight plus a
// readable rendering of the pattern set
func technicalDetails(signals []SignalScore, patterns []PatternTag) []string {
	details := make([]string, 0, explanationMaxDetails)
	for _, sig := range signals {
		if sig.Score <= explanationMinorScore {
			continue
		}
		details = append(details, fmt.Sprintf("%s signal scored %.2f", sig.Name, sig.Score))
		if len(details) >= explanationMaxDetails {
			return details
		}
	}
	if len(patterns) > 0 {
		labels := make([]string, 0, len(patterns))
		for _, p := range patterns {
			if label, ok := patternLabels[p]; ok {
				labels = append(labels, label)
			} else {
				labels = append(labels, string(p))
			}
		}
		details = append(details, "Detected techniques: "+strings.Join(labels, ", "))
	}
	if len(details) == 0 {
		details = append(details, "No signal exceeded the reporting threshold")
	}
	return details
}

// confidenceFactors explains where the confidence value came from
func confidenceFactors(confidence float64, activeSignals, reasonCount int) []string {
	factors := make([]string, 0, explanationMaxFactors)
	switch {
	case activeSignals == 0:
		factors = append(factors, "No detection method produced a usable signal; the verdict defaults to uncertain")
	case activeSignals == 1:
		factors = append(factors, "Only one detection method produced a signal, so confidence is conservatively bounded")
	default:
		factors = append(factors, fmt.Sprintf("%d independent detection methods contributed to this verdict", activeSignals))
	}
	if reasonCount > 3 {
		factors = append(factors, fmt.Sprintf("%d distinct indicators were collected across all methods", reasonCount))
	}
	if confidence >= 0.9 {
		factors = append(factors, "The detection methods were in strong agreement")
	}
	return factors
}
