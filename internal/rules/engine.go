package rules

import (
	"go.uber.org/zap"

	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/utils"
	"github.com/phishnot/phishnot/internal/whitelist"
)

// Engine is the deterministic heuristic signal source. It operates
// purely on the email's text, metadata and links: no I/O, no errors,
// identical input always yields identical output.
type Engine struct {
	cfg       Config
	whitelist *whitelist.Checker
	logger    *zap.Logger
}

// NewEngine creates a rule engine with the given tables and whitelist
func NewEngine(cfg Config, wl *whitelist.Checker, logger *zap.Logger) *Engine {
	if wl == nil {
		wl = whitelist.NewChecker(nil, logger)
	}
	return &Engine{
		cfg:       cfg,
		whitelist: wl,
		logger:    logger,
	}
}

// evaluation carries the shared state of one Evaluate call: the
// normalized views of the email plus the running accumulation
type evaluation struct {
	rawText     string
	text        string // normalized body
	subject     string // normalized subject
	sender      string // as given
	senderLocal string
	senderDom   string
	links       []string // normalized
	whitelisted bool

	score    float64
	reasons  []string
	patterns []core.PatternTag
	tagged   map[core.PatternTag]bool
}

func (ev *evaluation) add(delta float64, reason string, tags ...core.PatternTag) {
	ev.score += delta
	if reason != "" {
		ev.reasons = append(ev.reasons, reason)
	}
	for _, tag := range tags {
		if !ev.tagged[tag] {
			ev.tagged[tag] = true
			ev.patterns = append(ev.patterns, tag)
		}
	}
}

// Evaluate runs every heuristic check and returns the accumulated
// signal, clamped to [0,1]
func (e *Engine) Evaluate(text, sender, subject string, links []string) core.SignalResult {
	ev := &evaluation{
		rawText:     text,
		text:        utils.NormalizeForMatching(text),
		subject:     utils.NormalizeForMatching(subject),
		sender:      sender,
		senderLocal: whitelist.LocalPart(sender),
		senderDom:   whitelist.Domain(sender),
		whitelisted: e.whitelist.IsWhitelisted(sender),
		reasons:     []string{},
		patterns:    []core.PatternTag{},
		tagged:      make(map[core.PatternTag]bool),
	}
	for _, link := range links {
		ev.links = append(ev.links, utils.NormalizeForMatching(link))
	}

	// The whitelist discount is applied once, before everything else,
	// and is the only negative contribution
	if ev.whitelisted {
		ev.score -= e.cfg.WhitelistDiscount
	}

	e.checkGreeting(ev)
	e.checkReplyTo(ev)
	e.checkTrackingPixel(ev)
	e.checkBrands(ev)
	e.checkLinks(ev)
	e.checkUrgency(ev)
	e.checkCredentials(ev)
	e.checkSenderSpoof(ev)
	e.checkInconsistency(ev)
	e.checkGrammar(ev)

	result := core.SignalResult{
		Score:    core.Clamp01(ev.score),
		Reasons:  ev.reasons,
		Patterns: ev.patterns,
	}

	if e.logger != nil {
		e.logger.Debug("Rule engine evaluated email",
			zap.Float64("score", result.Score),
			zap.Int("reasons", len(result.Reasons)),
			zap.Bool("whitelisted", ev.whitelisted))
	}

	return result
}
