package rules

import "regexp"

// WeightedPattern is one row of a weighted keyword table
type WeightedPattern struct {
	Pattern     *regexp.Regexp
	Weight      float64
	Description string
}

// Brand describes a commonly-impersonated brand: how to spot it in the
// email, which domains legitimately belong to it, and which context
// keywords make a mention suspicious rather than incidental.
type Brand struct {
	Name              string
	Pattern           *regexp.Regexp
	LegitimateDomains []string
	ContextKeywords   []string
}

// InconsistencyRule flags a fabricated identity: a sender shape and a
// content claim that should not co-occur
type InconsistencyRule struct {
	SenderPattern  *regexp.Regexp
	ContentPattern *regexp.Regexp
	Description    string
}

// Config holds every weight, cap and pattern table of the rule engine.
// All scores are additive deltas; the final score is clamped to [0,1].
type Config struct {
	// The whitelist discount is the only negative contribution
	WhitelistDiscount float64

	// Generic greeting ("Dear First Last")
	GreetingScore           float64
	GreetingUpgradedScore   float64
	GreetingDowngradedScore float64
	SyntheticNamePattern    *regexp.Regexp

	// Reply-To mismatch
	ReplyToDecoyScore     float64
	ReplyToUnknownScore   float64
	ReplyToAsymmetryScore float64
	DecoyDomains          []string

	// Tracking pixels / beacons; first match only
	TrackingScore    float64
	TrackingPatterns []*regexp.Regexp

	// Brand impersonation
	Brands              []Brand
	LookAlikeThreshold  float64
	BrandLookAlikeScore float64
	BrandContextScore   float64

	// Per-link checks
	SuspiciousLinkScore   float64
	SuspiciousLinkPattern *regexp.Regexp
	ShortenerScore        float64
	ShortenerDomains      []string
	IPLinkScore           float64

	// Weighted keyword tables
	UrgencyPatterns           []WeightedPattern
	UrgencyCap                float64
	CredentialPatterns        []WeightedPattern
	CredentialCap             float64
	CredentialWhitelistFactor float64

	// Sender-domain spoofing (paypal.com.evil.net style)
	TrustedDomains   []string
	SenderSpoofScore float64

	// Content inconsistency pairs
	Inconsistencies    []InconsistencyRule
	InconsistencyScore float64

	// Grammar heuristic
	ConfusedWords  []string
	GrammarScore   float64
	GrammarMinHits int
}

// DefaultConfig returns the tuned rule tables. Weights were settled by
// iterating against labelled samples; override them through the host
// configuration rather than editing this file.
func DefaultConfig() Config {
	return Config{
		WhitelistDiscount: 0.2,

		GreetingScore:           0.25,
		GreetingUpgradedScore:   0.35,
		GreetingDowngradedScore: 0.15,
		SyntheticNamePattern:    regexp.MustCompile(`^(?:user|customer|test user|john doe|jane doe|valued customer|account holder|sir|madam)$`),

		ReplyToDecoyScore:     0.5,
		ReplyToUnknownScore:   0.25,
		ReplyToAsymmetryScore: 0.4,
		DecoyDomains:          []string{"example.com", "example.org", "test.com", "mailinator.com"},

		TrackingScore: 0.3,
		TrackingPatterns: []*regexp.Regexp{
			regexp.MustCompile(`<img[^>]*width=["']?1["']?[^>]*height=["']?1["']?`),
			regexp.MustCompile(`<img[^>]*height=["']?1["']?[^>]*width=["']?1["']?`),
			regexp.MustCompile(`1x1\.(?:gif|png|jpg)`),
			regexp.MustCompile(`(?:pixel|beacon|track(?:ing)?|open)\.(?:gif|png|php|aspx)\?`),
			regexp.MustCompile(`[?&](?:utm_source|utm_campaign|tracking_id|recipient_id|open_id)=`),
		},

		Brands: []Brand{
			{
				Name:              "paypal",
				Pattern:           regexp.MustCompile(`\bpaypal\b`),
				LegitimateDomains: []string{"paypal.com", "paypal.co.uk"},
				ContextKeywords:   []string{"account", "verify", "suspended", "limited", "payment", "login", "security"},
			},
			{
				Name:              "amazon",
				Pattern:           regexp.MustCompile(`\bamazon\b`),
				LegitimateDomains: []string{"amazon.com", "amazon.in", "amazon.co.uk"},
				ContextKeywords:   []string{"order", "account", "verify", "refund", "prime", "delivery", "suspended"},
			},
			{
				Name:              "microsoft",
				Pattern:           regexp.MustCompile(`\b(?:microsoft|office ?365|outlook)\b`),
				LegitimateDomains: []string{"microsoft.com", "office.com", "outlook.com", "live.com"},
				ContextKeywords:   []string{"account", "password", "sign in", "verify", "mailbox", "expire", "storage"},
			},
			{
				Name:              "apple",
				Pattern:           regexp.MustCompile(`\b(?:apple|icloud|app store)\b`),
				LegitimateDomains: []string{"apple.com", "icloud.com"},
				ContextKeywords:   []string{"id", "account", "verify", "locked", "payment", "receipt", "subscription"},
			},
			{
				Name:              "google",
				Pattern:           regexp.MustCompile(`\bgoogle\b`),
				LegitimateDomains: []string{"google.com", "gmail.com", "accounts.google.com"},
				ContextKeywords:   []string{"account", "password", "verify", "security alert", "sign in", "storage"},
			},
			{
				Name:              "netflix",
				Pattern:           regexp.MustCompile(`\bnetflix\b`),
				LegitimateDomains: []string{"netflix.com"},
				ContextKeywords:   []string{"account", "payment", "membership", "suspended", "update", "billing"},
			},
			{
				Name:              "bank",
				Pattern:           regexp.MustCompile(`\b(?:sbi|hdfc|icici|axis bank|chase|wells fargo|bank of america)\b`),
				LegitimateDomains: []string{"sbi.co.in", "hdfcbank.com", "icicibank.com", "axisbank.com", "chase.com", "wellsfargo.com", "bankofamerica.com"},
				ContextKeywords:   []string{"account", "blocked", "kyc", "verify", "debit", "credit", "net banking", "statement"},
			},
		},
		LookAlikeThreshold:  0.7,
		BrandLookAlikeScore: 0.45,
		BrandContextScore:   0.25,

		SuspiciousLinkScore:   0.15,
		SuspiciousLinkPattern: regexp.MustCompile(`(?:login|logon|signin|sign-in|verify|verification|secure|account|update|confirm|banking|password|wallet|invoice|webscr|auth)`),
		ShortenerScore:        0.1,
		ShortenerDomains: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
			"buff.ly", "rebrand.ly", "cutt.ly", "shorturl.at", "rb.gy", "tiny.cc",
		},
		IPLinkScore: 0.2,

		UrgencyPatterns: []WeightedPattern{
			{regexp.MustCompile(`urgent(?:\s+action)?(?:\s+required)?`), 0.15, "urgent action demanded"},
			{regexp.MustCompile(`act (?:now|immediately)`), 0.10, "immediate action pressure"},
			{regexp.MustCompile(`account (?:will be|has been|is) (?:suspended|locked|closed|deactivated)`), 0.15, "account suspension threat"},
			{regexp.MustCompile(`within (?:24|48) hours?`), 0.10, "artificial deadline"},
			{regexp.MustCompile(`final (?:notice|warning|reminder)`), 0.12, "final-notice framing"},
			{regexp.MustCompile(`expires? (?:today|soon|shortly)`), 0.10, "expiry pressure"},
			{regexp.MustCompile(`last chance`), 0.08, "last-chance framing"},
			{regexp.MustCompile(`immediate(?:ly)? (?:attention|response|action)`), 0.10, "immediacy pressure"},
			{regexp.MustCompile(`failure to (?:respond|comply|act)`), 0.12, "consequence threat"},
		},
		UrgencyCap: 0.4,

		CredentialPatterns: []WeightedPattern{
			{regexp.MustCompile(`(?:verify|confirm|validate) your (?:password|account|identity|information)`), 0.20, "credential verification request"},
			{regexp.MustCompile(`enter your (?:credentials|password|pin|otp)`), 0.20, "direct credential request"},
			{regexp.MustCompile(`update your (?:payment|billing|card) (?:details|information|method)`), 0.15, "payment detail request"},
			{regexp.MustCompile(`(?:social security|ssn|aadhaar|pan card)`), 0.15, "government ID request"},
			{regexp.MustCompile(`credit card number`), 0.12, "card number request"},
			{regexp.MustCompile(`click (?:here|below|the link) to (?:verify|login|sign in|unlock|restore)`), 0.15, "login-link lure"},
			{regexp.MustCompile(`security questions?`), 0.08, "security question request"},
			{regexp.MustCompile(`one[- ]time (?:password|code)|otp`), 0.12, "OTP request"},
		},
		CredentialCap:             0.5,
		CredentialWhitelistFactor: 0.6,

		TrustedDomains: []string{
			"paypal.com", "amazon.com", "microsoft.com", "apple.com",
			"google.com", "netflix.com", "facebook.com", "instagram.com",
		},
		SenderSpoofScore: 0.45,

		Inconsistencies: []InconsistencyRule{
			{
				SenderPattern:  regexp.MustCompile(`@(?:gmail|yahoo|hotmail|outlook|rediffmail)\.`),
				ContentPattern: regexp.MustCompile(`(?:official (?:bank )?notice|your bank account|on behalf of the bank|government (?:refund|grant))`),
				Description:    "official institutional claim sent from a personal mailbox",
			},
			{
				SenderPattern:  regexp.MustCompile(`@(?:gmail|yahoo|hotmail|outlook)\.`),
				ContentPattern: regexp.MustCompile(`(?:it (?:help ?desk|support team)|system administrator|mail administrator)`),
				Description:    "IT support claim sent from a personal mailbox",
			},
		},
		InconsistencyScore: 0.3,

		ConfusedWords: []string{
			"recieve", "beleive", "seperate", "occured", "untill", "acount",
			"verifiy", "securty", "informations", "kindly revert", "do the needful",
		},
		GrammarScore:   0.1,
		GrammarMinHits: 3,
	}
}
