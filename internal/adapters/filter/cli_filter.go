package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/ports"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	engine       *core.FusionEngine
	feedback     ports.FeedbackRepository
	windowLimit  int
	windowMaxAge time.Duration
	logger       *zap.Logger
	verbose      bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(
	engine *core.FusionEngine,
	feedback ports.FeedbackRepository,
	windowLimit int,
	windowMaxAge time.Duration,
	logger *zap.Logger,
	verbose bool,
) (*CliFilter, error) {
	return &CliFilter{
		engine:       engine,
		feedback:     feedback,
		windowLimit:  windowLimit,
		windowMaxAge: windowMaxAge,
		logger:       logger,
		verbose:      verbose,
	}, nil
}

// ProcessEmail analyzes an email and displays the verdict
func (f *CliFilter) ProcessEmail(ctx context.Context, req *core.AnalysisRequest) (*core.Verdict, error) {
	f.logger.Debug("Processing email", zap.String("sender", req.Sender))

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", req.Sender)
	fmt.Printf("Subject: %s\n", req.Subject)
	fmt.Printf("Body length: %d bytes\n", len(req.EmailText))
	fmt.Printf("Links found: %d\n", len(req.Links))

	// Print body preview if verbose
	if f.verbose {
		preview := req.EmailText
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Analyzing email...\n")

	window, err := f.recentFeedback(ctx, req.RequesterID)
	if err != nil {
		f.logger.Warn("Failed to load feedback window", zap.Error(err))
	}

	startTime := time.Now()
	verdict, err := f.engine.Evaluate(ctx, req, window)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Result: %s\n", verdict.Result)
	fmt.Printf("Score: %.2f\n", verdict.FusedScore)
	fmt.Printf("Confidence: %.2f\n", verdict.Confidence)
	fmt.Printf("Risk level: %s\n", verdict.RiskLevel)
	fmt.Printf("Summary: %s\n", verdict.Explanation.Summary)

	if len(verdict.DetectedPatterns) > 0 {
		fmt.Printf("Detected patterns: %s\n", joinPatterns(verdict.DetectedPatterns))
	}
	for _, signal := range verdict.Signals {
		fmt.Printf("  signal %-16s %.2f\n", signal.Name, signal.Score)
	}
	if f.verbose {
		for _, detail := range verdict.Explanation.TechnicalDetails {
			fmt.Printf("  detail: %s\n", detail)
		}
		for _, factor := range verdict.Explanation.ConfidenceFactors {
			fmt.Printf("  confidence: %s\n", factor)
		}
		for _, reason := range verdict.Reasons {
			fmt.Printf("  reason: %s\n", reason)
		}
	}
	fmt.Printf("Processing time: %v\n", duration)

	return verdict, nil
}

func (f *CliFilter) recentFeedback(ctx context.Context, requesterID string) ([]core.FeedbackRecord, error) {
	if f.feedback == nil || requesterID == "" {
		return nil, nil
	}
	return f.feedback.Recent(ctx, requesterID, f.windowLimit, f.windowMaxAge)
}

func joinPatterns(patterns []core.PatternTag) string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
