// Package redact scrubs sensitive data from telemetry text before it is
// assembled into model context. Built-in patterns use Go's RE2 regexp for
// guaranteed linear-time matching; caller-supplied patterns are compiled with
// regexp2 and bounded by a hard match timeout, so a catastrophic pattern can
// never hang a redaction call.
package redact

import (
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/probelabs/webscope/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("redact")
	if err != nil {
		debugLog.Warnf("Failed to initialize redact logger, using stderr fallback: %v", err)
	}
}

// RiskLevel grades how sensitive the matched content is.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskRank orders risk levels so reports can keep the highest seen.
func riskRank(r RiskLevel) int {
	switch r {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// compiledPattern holds a pre-compiled built-in rule and its replacement.
type compiledPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
	risk        RiskLevel
	validate    func(match string) bool // optional post-match validation (e.g., Luhn)
}

// customPattern holds a caller-supplied rule compiled with a match timeout.
type customPattern struct {
	name        string
	regex       *regexp2.Regexp
	replacement string
}

// builtinPatterns defines the default redaction catalogue. Order matters:
// higher-sensitivity patterns run first so a credential is never partially
// consumed by a lower-sensitivity match (e.g., the URL rule).
var builtinPatterns = []struct {
	name     string
	pattern  string
	risk     RiskLevel
	validate func(string) bool
}{
	{
		name:    "private-key",
		pattern: `-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`,
		risk:    RiskCritical,
	},
	{
		name:    "aws-access-key",
		pattern: `AKIA[0-9A-Z]{16}`,
		risk:    RiskCritical,
	},
	{
		name:    "api-key",
		pattern: `(?i)(api[_-]?key|apikey|secret[_-]?key|client[_-]?secret)\s*[:=]\s*\S+`,
		risk:    RiskCritical,
	},
	{
		name:    "bearer-token",
		pattern: `Bearer [A-Za-z0-9\-._~+/]+=*`,
		risk:    RiskHigh,
	},
	{
		name:    "jwt",
		pattern: `eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+`,
		risk:    RiskHigh,
	},
	{
		name:    "password",
		pattern: `(?i)(password|passwd|pwd)\s*[:=]\s*\S+`,
		risk:    RiskHigh,
	},
	{
		name:     "credit-card",
		pattern:  `\b[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}\b`,
		risk:     RiskHigh,
		validate: luhnValid,
	},
	{
		name:    "national-id",
		pattern: `\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`,
		risk:    RiskHigh,
	},
	{
		name:    "email",
		pattern: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
		risk:    RiskMedium,
	},
	{
		name:    "phone",
		pattern: `\+?[0-9]{1,2}[-. ]?\(?[0-9]{3}\)?[-. ]?[0-9]{3}[-. ]?[0-9]{4}\b`,
		risk:    RiskMedium,
	},
	{
		name:    "ipv4",
		pattern: `\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`,
		risk:    RiskLow,
	},
	{
		name:    "url",
		pattern: `https?://[^\s"'<>\[\]]+`,
		risk:    RiskLow,
	},
}

// CustomPattern is a caller-supplied redaction rule. Replacement defaults to
// the category marker for the rule's name.
type CustomPattern struct {
	Name        string
	Pattern     string
	Replacement string
}

// Options configures an Engine.
type Options struct {
	// DisabledPatterns names built-in rules to skip. Unknown names are ignored.
	DisabledPatterns []string

	// CustomPatterns run after the built-in catalogue, each bounded by
	// PatternTimeout. A pattern that fails to compile or times out is skipped
	// and logged, never fatal.
	CustomPatterns []CustomPattern

	// PatternTimeout bounds each custom pattern's matching time.
	// Defaults to 100ms.
	PatternTimeout time.Duration
}

// Engine applies the redaction catalogue to text. Safe for concurrent use
// after construction.
type Engine struct {
	patterns []compiledPattern
	custom   []customPattern
	timeout  time.Duration
}

// Marker returns the opaque replacement written for a pattern name, so
// downstream readers know which category was removed.
func Marker(name string) string {
	return "[REDACTED:" + name + "]"
}

// NewEngine builds an engine with the built-in catalogue minus disabled
// patterns, plus any custom patterns.
func NewEngine(opts Options) *Engine {
	timeout := opts.PatternTimeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	engine := &Engine{timeout: timeout}

	disabled := make(map[string]bool, len(opts.DisabledPatterns))
	for _, name := range opts.DisabledPatterns {
		disabled[strings.ToLower(strings.TrimSpace(name))] = true
	}

	for _, bp := range builtinPatterns {
		if disabled[bp.name] {
			continue
		}
		re, err := regexp.Compile(bp.pattern)
		if err != nil {
			continue // should never happen for built-ins, but be safe
		}
		engine.patterns = append(engine.patterns, compiledPattern{
			name:        bp.name,
			regex:       re,
			replacement: Marker(bp.name),
			risk:        bp.risk,
			validate:    bp.validate,
		})
	}

	for _, cp := range opts.CustomPatterns {
		re, err := regexp2.Compile(cp.Pattern, regexp2.None)
		if err != nil {
			debugLog.Warnf("Skipping custom redaction pattern %q: %v", cp.Name, err)
			continue
		}
		re.MatchTimeout = timeout
		replacement := cp.Replacement
		if replacement == "" {
			replacement = Marker(cp.Name)
		}
		engine.custom = append(engine.custom, customPattern{
			name:        cp.Name,
			regex:       re,
			replacement: replacement,
		})
	}

	return engine
}

// Redact applies all patterns to input and returns the redacted result.
// Custom patterns run last; one that times out leaves its stage unapplied
// while every other pattern's replacements are kept.
func (e *Engine) Redact(input string) string {
	if input == "" {
		return ""
	}

	result := input
	for _, p := range e.patterns {
		if p.validate != nil {
			result = p.regex.ReplaceAllStringFunc(result, func(match string) string {
				if p.validate(match) {
					return p.replacement
				}
				return match
			})
		} else {
			result = p.regex.ReplaceAllString(result, p.replacement)
		}
	}

	for _, cp := range e.custom {
		replaced, err := cp.regex.Replace(result, cp.replacement, -1, -1)
		if err != nil {
			// Timeout or internal failure; keep the text from the patterns
			// that already ran.
			debugLog.Warnf("Custom redaction pattern %q failed: %v", cp.name, err)
			continue
		}
		result = replaced
	}

	return result
}

// Report summarizes what Analyze found without modifying the text.
type Report struct {
	MatchesByPattern map[string]int `json:"matches_by_pattern"`
	TotalMatches     int            `json:"total_matches"`
	Risk             RiskLevel      `json:"risk"`
}

// Analyze scans input against the built-in catalogue and grades the overall
// risk by the most sensitive category matched.
func (e *Engine) Analyze(input string) Report {
	report := Report{
		MatchesByPattern: make(map[string]int),
		Risk:             RiskNone,
	}
	if input == "" {
		return report
	}

	for _, p := range e.patterns {
		matches := p.regex.FindAllString(input, -1)
		count := 0
		for _, match := range matches {
			if p.validate != nil && !p.validate(match) {
				continue
			}
			count++
		}
		if count == 0 {
			continue
		}
		report.MatchesByPattern[p.name] = count
		report.TotalMatches += count
		if riskRank(p.risk) > riskRank(report.Risk) {
			report.Risk = p.risk
		}
	}

	return report
}

// luhnValid checks whether a candidate card number passes the Luhn checksum.
func luhnValid(number string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	alt := false
	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')
		if alt {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alt = !alt
	}
	return sum%10 == 0
}
