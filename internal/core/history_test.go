package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func incorrect(original Result, reason string) FeedbackRecord {
	return FeedbackRecord{OriginalResult: original, UserCorrection: "incorrect", ReasonText: reason}
}

func correct(original Result) FeedbackRecord {
	return FeedbackRecord{OriginalResult: original, UserCorrection: "correct"}
}

func TestAdjustHistory_EmptyWindow(t *testing.T) {
	adj := AdjustHistory(DefaultHistoryConfig(), nil, []PatternTag{PatternUrgencyLanguage}, "a@b.example")
	assert.Equal(t, 0.0, adj.Offset)
	assert.Empty(t, adj.Reasons)
}

func TestAdjustHistory_NoCurrentPatterns(t *testing.T) {
	window := []FeedbackRecord{incorrect(ResultPhishing, ""), incorrect(ResultPhishing, "")}
	adj := AdjustHistory(DefaultHistoryConfig(), window, nil, "a@b.example")
	assert.Equal(t, 0.0, adj.Offset)
}

func TestAdjustHistory_Overcorrection(t *testing.T) {
	cfg := DefaultHistoryConfig()
	// 4 of 10 verdicts overruled: rate 0.4 exceeds the 0.3 limit
	window := []FeedbackRecord{
		incorrect(ResultPhishing, ""), incorrect(ResultPhishing, ""),
		incorrect(ResultPhishing, ""), incorrect(ResultPhishing, ""),
		correct(ResultSafe), correct(ResultSafe), correct(ResultSafe),
		correct(ResultPhishing), correct(ResultPhishing), correct(ResultSafe),
	}

	adj := AdjustHistory(cfg, window, []PatternTag{PatternUrgencyLanguage}, "a@b.example")

	assert.Equal(t, cfg.OvercorrectionOffset, adj.Offset)
	assert.Len(t, adj.Reasons, 1)
}

func TestAdjustHistory_MissedPhishingWins(t *testing.T) {
	cfg := DefaultHistoryConfig()
	// Every record is a correction, so both branches fire; the missed
	// phishing branch overrides the over-correction one
	window := []FeedbackRecord{
		incorrect(ResultSafe, ""), incorrect(ResultSafe, ""), incorrect(ResultSafe, ""),
	}

	adj := AdjustHistory(cfg, window, []PatternTag{PatternUrgencyLanguage}, "a@b.example")

	assert.Equal(t, cfg.FalseSafeOffset, adj.Offset)
	assert.Len(t, adj.Reasons, 2)
}

func TestAdjustHistory_SenderMentionStacks(t *testing.T) {
	cfg := DefaultHistoryConfig()
	window := []FeedbackRecord{
		incorrect(ResultSafe, "this was phishing from scam@evil.example"),
		incorrect(ResultSafe, ""), incorrect(ResultSafe, ""),
	}

	adj := AdjustHistory(cfg, window, []PatternTag{PatternUrgencyLanguage}, "scam@evil.example")

	assert.InDelta(t, cfg.FalseSafeOffset+cfg.SenderMentionBonus, adj.Offset, 0.001)
}

func TestAdjustHistory_SenderMentionRequiresIncorrectRecord(t *testing.T) {
	cfg := DefaultHistoryConfig()
	window := []FeedbackRecord{
		{OriginalResult: ResultSafe, UserCorrection: "correct", ReasonText: "mail from scam@evil.example was fine"},
	}

	adj := AdjustHistory(cfg, window, []PatternTag{PatternUrgencyLanguage}, "scam@evil.example")

	assert.Equal(t, 0.0, adj.Offset)
}

func TestAdjustHistory_BelowThresholdsNoOffset(t *testing.T) {
	cfg := DefaultHistoryConfig()
	// 1 of 10: rate 0.1, falseSafe 1, neither branch fires
	window := []FeedbackRecord{
		incorrect(ResultSafe, ""),
		correct(ResultSafe), correct(ResultSafe), correct(ResultSafe),
		correct(ResultSafe), correct(ResultSafe), correct(ResultSafe),
		correct(ResultPhishing), correct(ResultPhishing), correct(ResultPhishing),
	}

	adj := AdjustHistory(cfg, window, []PatternTag{PatternUrgencyLanguage}, "")

	assert.Equal(t, 0.0, adj.Offset)
	assert.Empty(t, adj.Reasons)
}
