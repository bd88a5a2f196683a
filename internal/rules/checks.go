package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/whitelist"
)

var (
	// "Dear First Last" shaped salutation, matched on the raw text so
	// capitalization still carries information
	greetingPattern = regexp.MustCompile(`\bDear\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)+)`)

	replyToPattern = regexp.MustCompile(`reply-to:\s*<?([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})>?`)

	ipLinkPattern = regexp.MustCompile(`^(?:https?://)?(?:\d{1,3}\.){3}\d{1,3}(?:[:/]|$)`)
)

// checkGreeting flags impersonal "Dear First Last" salutations. The
// indicator is upgraded when the captured name looks synthetic or does
// not line up with the sender's local part, and downgraded otherwise.
func (e *Engine) checkGreeting(ev *evaluation) {
	if ev.whitelisted {
		return
	}
	m := greetingPattern.FindStringSubmatch(ev.rawText)
	if m == nil {
		return
	}
	name := strings.TrimSpace(m[1])

	if e.cfg.SyntheticNamePattern.MatchString(strings.ToLower(name)) {
		ev.add(e.cfg.GreetingUpgradedScore,
			fmt.Sprintf("Greeting uses a placeholder name (%q), typical of bulk phishing", name),
			core.PatternSocialEngineering, core.PatternImpersonation)
		return
	}
	if ev.senderLocal != "" && !nameMatchesLocalPart(name, ev.senderLocal) {
		ev.add(e.cfg.GreetingUpgradedScore,
			fmt.Sprintf("Greeting addresses %q, which does not match the sender address", name),
			core.PatternSocialEngineering, core.PatternImpersonation)
		return
	}
	ev.add(e.cfg.GreetingDowngradedScore,
		"Generic full-name greeting instead of a personal salutation",
		core.PatternSocialEngineering)
}

// nameMatchesLocalPart reports whether any token of the greeting name
// appears in the sender's local part
func nameMatchesLocalPart(name, local string) bool {
	local = strings.ToLower(local)
	for _, token := range strings.Fields(strings.ToLower(name)) {
		if len(token) >= 3 && strings.Contains(local, token) {
			return true
		}
	}
	return false
}

// checkReplyTo compares a reply-to address found in the body against
// the sender's domain. A decoy reply-to domain is the strongest signal;
// a trusted sender paired with an untrusted reply-to is the classic
// asymmetric trust exploit.
func (e *Engine) checkReplyTo(ev *evaluation) {
	m := replyToPattern.FindStringSubmatch(ev.text)
	if m == nil {
		return
	}
	replyDomain := whitelist.Domain(m[1])
	if replyDomain == "" || replyDomain == ev.senderDom {
		return
	}

	for _, decoy := range e.cfg.DecoyDomains {
		if replyDomain == decoy {
			ev.add(e.cfg.ReplyToDecoyScore,
				fmt.Sprintf("Reply-To points at the throwaway domain %s instead of the sender's domain", replyDomain),
				core.PatternImpersonation)
			return
		}
	}

	if ev.whitelisted && !e.whitelist.IsWhitelisted(replyDomain) {
		ev.add(e.cfg.ReplyToAsymmetryScore,
			fmt.Sprintf("Trusted sender but replies are routed to unrelated domain %s", replyDomain),
			core.PatternImpersonation)
		return
	}

	ev.add(e.cfg.ReplyToUnknownScore,
		fmt.Sprintf("Reply-To domain %s differs from the sender domain %s", replyDomain, ev.senderDom))
}

// checkTrackingPixel looks for 1x1 images and beacon URLs. First match
// only: multiple pixels don't stack.
func (e *Engine) checkTrackingPixel(ev *evaluation) {
	haystacks := append([]string{ev.text}, ev.links...)
	for _, pattern := range e.cfg.TrackingPatterns {
		for _, h := range haystacks {
			if pattern.MatchString(h) {
				ev.add(e.cfg.TrackingScore,
					"Contains a hidden tracking pixel or beacon URL",
					core.PatternTracking)
				return
			}
		}
	}
}

// checkBrands scores brand mentions whose sender domain does not belong
// to the brand. A look-alike domain (edit distance just short of exact,
// or the brand name embedded in an unrelated domain) is scored highest.
func (e *Engine) checkBrands(ev *evaluation) {
	if ev.whitelisted {
		return
	}
	for _, brand := range e.cfg.Brands {
		if !brand.Pattern.MatchString(ev.text) && !brand.Pattern.MatchString(ev.subject) {
			continue
		}
		if !containsAnyKeyword(ev.text, ev.subject, brand.ContextKeywords) {
			continue
		}
		if isLegitimateBrandDomain(ev.senderDom, brand.LegitimateDomains) {
			continue
		}

		lookAlike := false
		for _, legit := range brand.LegitimateDomains {
			sim := domainSimilarity(ev.senderDom, legit)
			if sim > e.cfg.LookAlikeThreshold && sim < 1.0 {
				lookAlike = true
				break
			}
		}
		// The brand name buried inside an unrelated sender domain
		// (paypal-secure-login.net) is the same play as a look-alike
		if !lookAlike && ev.senderDom != "" && strings.Contains(ev.senderDom, brand.Name) {
			lookAlike = true
		}

		if lookAlike {
			ev.add(e.cfg.BrandLookAlikeScore,
				fmt.Sprintf("Sender domain %q mimics %s but is not a legitimate %s domain", ev.senderDom, brand.Name, brand.Name),
				core.PatternDomainSpoofing, core.PatternBrandSpoofing)
		} else {
			ev.add(e.cfg.BrandContextScore,
				fmt.Sprintf("References %s account activity but was not sent from a %s domain", brand.Name, brand.Name),
				core.PatternBrandSpoofing)
		}
	}
}

func isLegitimateBrandDomain(senderDom string, legit []string) bool {
	for _, d := range legit {
		if senderDom == d || strings.HasSuffix(senderDom, "."+d) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(text, subject string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) || strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

// checkLinks scores each link independently: suspicious tokens, URL
// shorteners and bare-IP targets each add their own delta
func (e *Engine) checkLinks(ev *evaluation) {
	suspicious, shortened, ipLinks := 0, 0, 0
	for _, link := range ev.links {
		host := linkHost(link)
		if e.cfg.SuspiciousLinkPattern.MatchString(link) {
			ev.score += e.cfg.SuspiciousLinkScore
			suspicious++
		}
		for _, shortener := range e.cfg.ShortenerDomains {
			if host == shortener {
				ev.score += e.cfg.ShortenerScore
				shortened++
				break
			}
		}
		if ipLinkPattern.MatchString(link) {
			ev.score += e.cfg.IPLinkScore
			ipLinks++
		}
	}
	if suspicious > 0 {
		ev.add(0, fmt.Sprintf("%d link(s) contain credential-lure tokens", suspicious), core.PatternSuspiciousDomain)
	}
	if shortened > 0 {
		ev.add(0, fmt.Sprintf("%d link(s) use URL shorteners that hide the destination", shortened), core.PatternURLShortener)
	}
	if ipLinks > 0 {
		ev.add(0, fmt.Sprintf("%d link(s) point at a raw IP address", ipLinks), core.PatternIPAddressLink)
	}
}

// linkHost extracts the lowercase host portion of an already-normalized
// link
func linkHost(link string) string {
	s := link
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return s
}

// checkUrgency sums the weighted urgency table, halves the total for
// whitelisted senders and caps it before adding
func (e *Engine) checkUrgency(ev *evaluation) {
	total := 0.0
	matched := []string{}
	for _, wp := range e.cfg.UrgencyPatterns {
		if wp.Pattern.MatchString(ev.text) || wp.Pattern.MatchString(ev.subject) {
			total += wp.Weight
			matched = append(matched, wp.Description)
		}
	}
	if total == 0 {
		return
	}
	if ev.whitelisted {
		total /= 2
	}
	if total > e.cfg.UrgencyCap {
		total = e.cfg.UrgencyCap
	}
	ev.add(total,
		"Urgency tactics: "+strings.Join(matched, ", "),
		core.PatternUrgencyLanguage)
}

// checkCredentials works like the urgency table but with its own cap
// and a reduced (not halved) weight for whitelisted senders
func (e *Engine) checkCredentials(ev *evaluation) {
	total := 0.0
	matched := []string{}
	for _, wp := range e.cfg.CredentialPatterns {
		if wp.Pattern.MatchString(ev.text) || wp.Pattern.MatchString(ev.subject) {
			w := wp.Weight
			if ev.whitelisted {
				w *= e.cfg.CredentialWhitelistFactor
			}
			total += w
			matched = append(matched, wp.Description)
		}
	}
	if total == 0 {
		return
	}
	if total > e.cfg.CredentialCap {
		total = e.cfg.CredentialCap
	}
	ev.add(total,
		"Credential harvesting cues: "+strings.Join(matched, ", "),
		core.PatternCredentialHarvesting)
}

// checkSenderSpoof catches paypal.com.evil.net-style senders: a trusted
// domain embedded in the sender string without the sender actually
// belonging to it
func (e *Engine) checkSenderSpoof(ev *evaluation) {
	sender := strings.ToLower(ev.sender)
	if sender == "" {
		return
	}
	for _, trusted := range e.cfg.TrustedDomains {
		if strings.Contains(sender, trusted) && !strings.HasSuffix(ev.senderDom, trusted) {
			ev.add(e.cfg.SenderSpoofScore,
				fmt.Sprintf("Sender embeds %s but does not belong to that domain", trusted),
				core.PatternDomainSpoofing)
			return
		}
	}
}

// checkInconsistency flags sender/content pairs that imply a fabricated
// identity
func (e *Engine) checkInconsistency(ev *evaluation) {
	sender := strings.ToLower(ev.sender)
	for _, rule := range e.cfg.Inconsistencies {
		if rule.SenderPattern.MatchString(sender) && rule.ContentPattern.MatchString(ev.text) {
			ev.add(e.cfg.InconsistencyScore,
				"Identity inconsistency: "+rule.Description,
				core.PatternImpersonation)
			return
		}
	}
}

// checkGrammar counts commonly-confused words; a pile of them is a weak
// but real phishing tell
func (e *Engine) checkGrammar(ev *evaluation) {
	hits := 0
	for _, word := range e.cfg.ConfusedWords {
		hits += strings.Count(ev.text, word)
	}
	if hits >= e.cfg.GrammarMinHits {
		ev.add(e.cfg.GrammarScore,
			fmt.Sprintf("Contains %d spelling/grammar anomalies common in phishing", hits),
			core.PatternGrammarIssues)
	}
}
