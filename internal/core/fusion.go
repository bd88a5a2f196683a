package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FusionEngine runs the rule engine and every signal adapter
// concurrently, applies the feedback-history adjustment and merges
// everything into one verdict. It holds no cross-request state: each
// call is a pure function of its inputs.
type FusionEngine struct {
	rules          RuleEvaluator
	analyzers      []ContentAnalyzer
	urlChecker     URLReputationChecker
	fusionCfg      FusionConfig
	historyCfg     HistoryConfig
	adapterTimeout time.Duration
	logger         *zap.Logger
}

// NewFusionEngine creates a fusion engine. The URL checker may be nil
// when no reputation provider is configured; analyzers may be empty.
func NewFusionEngine(
	rules RuleEvaluator,
	analyzers []ContentAnalyzer,
	urlChecker URLReputationChecker,
	fusionCfg FusionConfig,
	historyCfg HistoryConfig,
	adapterTimeout time.Duration,
	logger *zap.Logger,
) *FusionEngine {
	if adapterTimeout <= 0 {
		adapterTimeout = 15 * time.Second
	}
	return &FusionEngine{
		rules:          rules,
		analyzers:      analyzers,
		urlChecker:     urlChecker,
		fusionCfg:      fusionCfg,
		historyCfg:     historyCfg,
		adapterTimeout: adapterTimeout,
		logger:         logger,
	}
}

// Evaluate classifies one email. Only an invalid request or a cancelled
// context surfaces as an error; every signal-level failure degrades to
// a zero-signal result and is reflected in confidence and explanation
// text instead. A partial verdict is never returned.
func (e *FusionEngine) Evaluate(ctx context.Context, req *AnalysisRequest, feedback []FeedbackRecord) (*Verdict, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Rule engine runs synchronously; it performs no I/O
	ruleResult := e.rules.Evaluate(req.EmailText, req.Sender, req.Subject, req.Links).Clamped()

	signals := make([]signalInput, 1+len(e.analyzers)+1)
	signals[0] = signalInput{Name: "rules", Kind: KindRules, Result: ruleResult}

	// All adapters run concurrently, each bounded by its own timeout.
	// The join is wait-for-all: partial results are never combined.
	g, gctx := errgroup.WithContext(ctx)
	for i, analyzer := range e.analyzers {
		i, analyzer := i, analyzer
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, e.adapterTimeout)
			defer cancel()
			signals[1+i] = signalInput{
				Name:   analyzer.Name(),
				Kind:   KindAnalyzer,
				Result: analyzer.Analyze(actx, req).Clamped(),
			}
			return nil
		})
	}
	urlSlot := 1 + len(e.analyzers)
	if e.urlChecker != nil {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, e.adapterTimeout)
			defer cancel()
			signals[urlSlot] = signalInput{
				Name:   e.urlChecker.Name(),
				Kind:   KindURLReputation,
				Result: e.urlChecker.Check(actx, req.Links).Clamped(),
			}
			return nil
		})
	} else {
		signals[urlSlot] = signalInput{Name: "url_reputation", Kind: KindURLReputation, Result: ZeroSignal("")}
	}
	_ = g.Wait() // adapters degrade rather than fail

	// The whole request was cancelled: no best-effort partial score
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patterns := dedupPatterns(signals)
	adjustment := AdjustHistory(e.historyCfg, feedback, patterns, req.Sender)

	outcome := combine(e.fusionCfg, signals, adjustment, e.logger)

	verdict := &Verdict{
		ID:               uuid.NewString(),
		Result:           outcome.Result,
		Confidence:       outcome.Confidence,
		RiskLevel:        outcome.RiskLevel,
		FusedScore:       Round2(outcome.FinalScore),
		Reasons:          outcome.Reasons,
		DetectedPatterns: outcome.Patterns,
		Signals:          outcome.Signals,
		AnalyzedAt:       time.Now(),
	}
	verdict.Explanation = BuildExplanation(outcome.Result, outcome.Confidence, outcome.Signals, outcome.Patterns, outcome.Reasons, outcome.ActiveCount)

	e.logger.Info("Email analyzed",
		zap.String("analysis_id", verdict.ID),
		zap.String("result", string(verdict.Result)),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("risk_level", string(verdict.RiskLevel)),
		zap.Int("patterns", len(verdict.DetectedPatterns)))

	return verdict, nil
}
