package core

import (
	"fmt"
	"strings"
)

// HistoryConfig holds the tunables for feedback-based personalization
type HistoryConfig struct {
	// CorrectionRateLimit is the share of incorrect verdicts above which
	// the engine dials back its phishing bias
	CorrectionRateLimit float64
	// OvercorrectionOffset is the (negative) offset applied when the
	// user keeps overruling phishing verdicts
	OvercorrectionOffset float64
	// FalseSafeCount is how many missed-phishing corrections it takes to
	// raise sensitivity instead
	FalseSafeCount int
	// FalseSafeOffset is the (positive) offset applied in that case
	FalseSafeOffset float64
	// SenderMentionBonus is added when past corrections call out the
	// current sender by name
	SenderMentionBonus float64
}

// DefaultHistoryConfig returns the tuned personalization defaults
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		CorrectionRateLimit:  0.3,
		OvercorrectionOffset: -0.10,
		FalseSafeCount:       2,
		FalseSafeOffset:      0.15,
		SenderMentionBonus:   0.05,
	}
}

// AdjustHistory converts a bounded window of past user feedback into a
// small additive score offset plus explanatory reasons. Pure function:
// it only reads the window, the current pattern set and the sender.
//
// The over-correction branch and the missed-phishing branch assign the
// offset rather than accumulate it; when both fire, missed phishing
// wins. The sender-specific bonus stacks on top of either.
func AdjustHistory(cfg HistoryConfig, window []FeedbackRecord, currentPatterns []PatternTag, sender string) HistoryAdjustment {
	adj := HistoryAdjustment{Reasons: []string{}}
	if len(window) == 0 || len(currentPatterns) == 0 {
		return adj
	}

	incorrect := 0
	falseSafe := 0
	for _, rec := range window {
		if !rec.IsIncorrect() {
			continue
		}
		incorrect++
		if rec.OriginalResult == ResultSafe {
			falseSafe++
		}
	}

	correctionRate := float64(incorrect) / float64(len(window))
	if correctionRate > cfg.CorrectionRateLimit {
		adj.Offset = cfg.OvercorrectionOffset
		adj.Reasons = append(adj.Reasons, fmt.Sprintf(
			"Your feedback history (%.0f%% corrections) suggests previous verdicts were too aggressive; sensitivity reduced",
			correctionRate*100))
	}
	if falseSafe > cfg.FalseSafeCount {
		adj.Offset = cfg.FalseSafeOffset
		adj.Reasons = append(adj.Reasons, fmt.Sprintf(
			"%d emails previously marked safe were reported as phishing; sensitivity increased", falseSafe))
	}

	if sender != "" {
		if mentionsSender(window, sender) {
			adj.Offset += cfg.SenderMentionBonus
			adj.Reasons = append(adj.Reasons, "Previous feedback mentioned this sender in a reported misclassification")
		}
	}

	return adj
}

// mentionsSender reports whether any incorrect correction's free-text
// reason names the current sender
func mentionsSender(window []FeedbackRecord, sender string) bool {
	needle := strings.ToLower(strings.TrimSpace(sender))
	if needle == "" {
		return false
	}
	for _, rec := range window {
		if rec.ReasonText == "" || !rec.IsIncorrect() {
			continue
		}
		if strings.Contains(strings.ToLower(rec.ReasonText), needle) {
			return true
		}
	}
	return false
}
