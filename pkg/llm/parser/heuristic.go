package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/probelabs/webscope/pkg/types"
)

// sectionKind identifies which part of a free-text response a header opens.
type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionSummary
	sectionIssues
	sectionRecommendations
	sectionPerformance
)

var (
	itemPrefixRe = regexp.MustCompile(`^\s*(?:\d+[.)]\s+|[-*•]\s+)`)
	gradeRe      = regexp.MustCompile(`(?i)\bgrade\b[:\s]*([A-F][+-]?)`)
	scoreRe      = regexp.MustCompile(`(?i)\bscore\b[:\s]*(\d+(?:\.\d+)?)`)
	fixPrefixRe  = regexp.MustCompile(`(?i)^\s*(?:fix|suggested fix|solution|resolution)\s*[:\-]\s*`)
)

// parseHeuristic extracts sections by their case-insensitive headers and
// splits them into numbered or bulleted items. Classification is keyword
// lookup, never a trained classifier; it is a starting point, not complete.
func parseHeuristic(text string) (*parsed, bool) {
	lines := strings.Split(text, "\n")
	p := &parsed{}

	current := sectionNone
	var summaryLines []string
	var perfLines []string
	sawSection := false

	for _, line := range lines {
		if kind, ok := headerKind(line); ok {
			current = kind
			sawSection = true
			continue
		}

		switch current {
		case sectionSummary:
			summaryLines = append(summaryLines, line)
		case sectionIssues:
			p.issues = appendIssueLine(p.issues, line)
		case sectionRecommendations:
			p.recommendations = appendRecommendationLine(p.recommendations, line)
		case sectionPerformance:
			perfLines = append(perfLines, line)
		}
	}

	if !sawSection {
		return nil, false
	}

	p.summary = strings.TrimSpace(strings.Join(summaryLines, "\n"))
	p.performance = parsePerformanceSection(perfLines)

	if !p.relevant() {
		return nil, false
	}
	return p, true
}

// headerKind reports whether line is a section header and which section it
// opens. Headers may be markdown headings ("## Issues"), bolded, or bare
// words ending in a colon.
func headerKind(line string) (sectionKind, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "#")
	trimmed = strings.Trim(trimmed, "*_ ")
	trimmed = strings.TrimSuffix(trimmed, ":")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" || len(trimmed) > 40 {
		return sectionNone, false
	}

	switch strings.ToLower(trimmed) {
	case "summary", "overview", "analysis summary":
		return sectionSummary, true
	case "issues", "problems", "errors", "issues found", "bugs":
		return sectionIssues, true
	case "recommendations", "suggestions", "fixes", "improvements":
		return sectionRecommendations, true
	case "performance", "grade", "score", "performance assessment":
		return sectionPerformance, true
	default:
		return sectionNone, false
	}
}

// appendIssueLine starts a new issue on an item prefix, attaches "Fix:" lines
// as suggested fixes, and folds other text into the current description.
func appendIssueLine(issues []types.Issue, line string) []types.Issue {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return issues
	}

	if itemPrefixRe.MatchString(line) {
		title := strings.TrimSpace(itemPrefixRe.ReplaceAllString(line, ""))
		if title == "" {
			return issues
		}
		return append(issues, types.Issue{
			Title:    title,
			Severity: classifySeverity(title),
			Category: classifyCategory(title),
		})
	}

	if len(issues) == 0 {
		return issues
	}
	last := &issues[len(issues)-1]

	if fixPrefixRe.MatchString(trimmed) {
		fix := fixPrefixRe.ReplaceAllString(trimmed, "")
		if fix != "" {
			last.SuggestedFixes = append(last.SuggestedFixes, fix)
		}
		return issues
	}

	if last.Description == "" {
		last.Description = trimmed
	} else {
		last.Description += " " + trimmed
	}
	// Continuation text can sharpen the classification of a bare title.
	combined := last.Title + " " + last.Description
	last.Severity = classifySeverity(combined)
	last.Category = classifyCategory(combined)
	return issues
}

// appendRecommendationLine mirrors appendIssueLine for the recommendations
// section.
func appendRecommendationLine(recs []types.Recommendation, line string) []types.Recommendation {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return recs
	}

	if itemPrefixRe.MatchString(line) {
		title := strings.TrimSpace(itemPrefixRe.ReplaceAllString(line, ""))
		if title == "" {
			return recs
		}
		return append(recs, types.Recommendation{
			Title:    title,
			Type:     classifyRecommendationType(title),
			Priority: classifyPriority(title),
		})
	}

	if len(recs) == 0 {
		return recs
	}
	last := &recs[len(recs)-1]
	if last.Description == "" {
		last.Description = trimmed
	} else {
		last.Description += " " + trimmed
	}
	return recs
}

// parsePerformanceSection pulls a letter grade, a numeric score, and per-line
// metric assessments out of the performance section.
func parsePerformanceSection(lines []string) *types.PerformanceAssessment {
	if len(lines) == 0 {
		return nil
	}
	text := strings.Join(lines, "\n")

	perf := &types.PerformanceAssessment{}
	found := false

	if match := gradeRe.FindStringSubmatch(text); match != nil {
		perf.Grade = strings.ToUpper(match[1])
		found = true
	}
	if match := scoreRe.FindStringSubmatch(text); match != nil {
		if score, err := strconv.ParseFloat(match[1], 64); err == nil {
			perf.Score = score
			found = true
		}
	}

	for _, line := range lines {
		if !itemPrefixRe.MatchString(line) {
			continue
		}
		item := strings.TrimSpace(itemPrefixRe.ReplaceAllString(line, ""))
		name, rest, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "grade") || strings.EqualFold(strings.TrimSpace(name), "score") {
			continue
		}
		perf.Metrics = append(perf.Metrics, types.MetricAssessment{
			Metric:     strings.TrimSpace(name),
			Assessment: strings.TrimSpace(rest),
		})
		found = true
	}

	if !found {
		return nil
	}
	return perf
}

// classifySeverity grades issue text by keyword presence.
func classifySeverity(text string) types.Severity {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "critical", "severe", "blocking", "fatal", "crash", "data loss"):
		return types.SeverityCritical
	case containsAny(lower, "high", "major", "significant", "broken"):
		return types.SeverityHigh
	case containsAny(lower, "minor", "low", "trivial", "cosmetic"):
		return types.SeverityLow
	default:
		return types.SeverityMedium
	}
}

// classifyCategory buckets issue text by keyword presence.
func classifyCategory(text string) types.IssueCategory {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "javascript", "undefined", "null", "typeerror", "referenceerror", "exception", "uncaught", "syntax"):
		return types.CategoryJavaScriptError
	case containsAny(lower, "network", "404", "500", "fetch", "xhr", "cors", "request failed", "http"):
		return types.CategoryNetworkError
	case containsAny(lower, "memory", "leak", "heap"):
		return types.CategoryMemoryLeak
	case containsAny(lower, "slow", "performance", "latency", "render", "fps", "blocking time"):
		return types.CategoryPerformance
	case containsAny(lower, "security", "xss", "csrf", "injection", "vulnerab", "insecure"):
		return types.CategorySecurity
	case containsAny(lower, "accessibility", "a11y", "aria", "contrast", "screen reader"):
		return types.CategoryAccessibility
	default:
		return types.CategoryOther
	}
}

// classifyPriority grades recommendation text by keyword presence.
func classifyPriority(text string) types.Priority {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "urgent", "immediately", "critical", "asap"):
		return types.PriorityUrgent
	case containsAny(lower, "important", "high priority", "should"):
		return types.PriorityHigh
	case containsAny(lower, "minor", "optional", "consider", "nice to have"):
		return types.PriorityLow
	default:
		return types.PriorityMedium
	}
}

// classifyRecommendationType buckets recommendation text by keyword presence.
func classifyRecommendationType(text string) types.RecommendationType {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "fix", "patch", "correct", "repair"):
		return types.RecommendationCodeFix
	case containsAny(lower, "optimiz", "cache", "lazy", "compress", "minif", "speed up"):
		return types.RecommendationOptimization
	case containsAny(lower, "config", "setting", "header", "flag", "enable", "disable"):
		return types.RecommendationConfiguration
	case containsAny(lower, "architect", "refactor", "restructure", "redesign", "decouple"):
		return types.RecommendationArchitecture
	default:
		return types.RecommendationBestPractice
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
