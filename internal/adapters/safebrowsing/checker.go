package safebrowsing

import (
	"context"
	"fmt"

	"github.com/phishnot/phishnot/internal/core"
	"go.uber.org/zap"
	safebrowsing "google.golang.org/api/safebrowsing/v4"
)

// Checker is a URLReputationChecker backed by the Google Safe Browsing
// v4 lookup API
type Checker struct {
	service       *safebrowsing.Service
	clientID      string
	clientVersion string
	threatTypes   []string
	threatScore   float64
	logger        *zap.Logger
}

// NewChecker creates a Safe Browsing checker. The service may be nil
// when no API key is configured; checks then degrade to a zero signal.
func NewChecker(
	service *safebrowsing.Service,
	clientID string,
	clientVersion string,
	threatTypes []string,
	threatScore float64,
	logger *zap.Logger,
) *Checker {
	if threatScore <= 0 {
		threatScore = 0.9
	}
	return &Checker{
		service:       service,
		clientID:      clientID,
		clientVersion: clientVersion,
		threatTypes:   threatTypes,
		threatScore:   threatScore,
		logger:        logger,
	}
}

// Name identifies this checker in logs and explanations
func (c *Checker) Name() string {
	return "url_reputation"
}

// Check queries the provider for every link. Each confirmed threat
// adds a high fixed score, accumulated across links and clamped to 1.
// A provider error for one link never aborts the remaining links.
func (c *Checker) Check(ctx context.Context, links []string) core.SignalResult {
	if len(links) == 0 {
		return core.ZeroSignal("")
	}
	if c.service == nil {
		return core.ZeroSignal("url reputation checker not configured")
	}

	result := core.SignalResult{Reasons: []string{}, Patterns: []core.PatternTag{}}
	flagged := false
	for _, link := range links {
		matches, err := c.lookup(ctx, link)
		if err != nil {
			c.logger.Warn("Safe Browsing lookup failed",
				zap.String("url", link),
				zap.Error(err))
			continue
		}
		for _, match := range matches {
			result.Score += c.threatScore
			result.Reasons = append(result.Reasons, fmt.Sprintf(
				"URL flagged by Safe Browsing as %s: %s", match.ThreatType, link))
			flagged = true
		}
	}
	if flagged {
		result.Patterns = append(result.Patterns, core.PatternSafeBrowsingThreat)
	}
	return result.Clamped()
}

// lookup runs one Safe Browsing threatMatches.find call for one URL
func (c *Checker) lookup(ctx context.Context, link string) ([]*safebrowsing.GoogleSecuritySafebrowsingV4ThreatMatch, error) {
	req := &safebrowsing.GoogleSecuritySafebrowsingV4FindThreatMatchesRequest{
		Client: &safebrowsing.GoogleSecuritySafebrowsingV4ClientInfo{
			ClientId:      c.clientID,
			ClientVersion: c.clientVersion,
		},
		ThreatInfo: &safebrowsing.GoogleSecuritySafebrowsingV4ThreatInfo{
			ThreatTypes:      c.threatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries: []*safebrowsing.GoogleSecuritySafebrowsingV4ThreatEntry{
				{Url: link},
			},
		},
	}

	resp, err := c.service.ThreatMatches.Find(req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}
