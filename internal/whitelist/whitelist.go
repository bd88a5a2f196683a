package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker answers whether a sender belongs to a known-legitimate domain
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a whitelist checker. Domains are normalized to
// lowercase; subdomains of a whitelisted domain are also accepted.
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(domain))
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsWhitelisted checks if the sender's domain is in the whitelist.
// Accepts a bare domain or a full address.
func (c *Checker) IsWhitelisted(sender string) bool {
	domain := Domain(sender)
	if domain == "" || len(c.domains) == 0 {
		return false
	}

	for _, whitelisted := range c.domains {
		if domain == whitelisted || strings.HasSuffix(domain, "."+whitelisted) {
			if c.logger != nil {
				c.logger.Debug("Domain is whitelisted",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return true
		}
	}

	return false
}

// Domain extracts the lowercase domain from an email address. A string
// without an @ is treated as already being a domain.
func Domain(sender string) string {
	s := strings.ToLower(strings.TrimSpace(sender))
	if s == "" {
		return ""
	}
	// Strip a display-name form like "Name <user@host>"
	if i := strings.LastIndex(s, "<"); i >= 0 {
		s = strings.TrimSuffix(s[i+1:], ">")
	}
	if at := strings.LastIndex(s, "@"); at >= 0 {
		return s[at+1:]
	}
	return s
}

// LocalPart extracts the part before the @, or "" when there is none
func LocalPart(sender string) string {
	s := strings.ToLower(strings.TrimSpace(sender))
	if i := strings.LastIndex(s, "<"); i >= 0 {
		s = strings.TrimSuffix(s[i+1:], ">")
	}
	if at := strings.LastIndex(s, "@"); at >= 0 {
		return s[:at]
	}
	return ""
}
