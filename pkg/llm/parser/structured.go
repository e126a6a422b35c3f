package parser

import (
	"encoding/json"
	"strings"

	"github.com/probelabs/webscope/pkg/types"
)

// structuredResponse mirrors the JSON shape the context builder instructs the
// model to produce. Field names tolerate both snake_case and the camelCase
// some models emit.
type structuredResponse struct {
	Summary         string                     `json:"summary"`
	Issues          []structuredIssue          `json:"issues"`
	Recommendations []structuredRecommendation `json:"recommendations"`
	Performance     *structuredPerformance     `json:"performance"`
}

type structuredIssue struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       string   `json:"severity"`
	Category       string   `json:"category"`
	SuggestedFixes []string `json:"suggested_fixes"`
	SuggestedFix   string   `json:"suggested_fix"`
	Source         string   `json:"source"`
	File           string   `json:"file"`
	Line           int      `json:"line"`
}

type structuredRecommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Steps       []string `json:"steps"`
	Code        string   `json:"code"`
	CodeExcerpt string   `json:"code_excerpt"`
}

type structuredPerformance struct {
	Grade   string             `json:"grade"`
	Score   float64            `json:"score"`
	Metrics []structuredMetric `json:"metrics"`
}

type structuredMetric struct {
	Metric     string `json:"metric"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	Assessment string `json:"assessment"`
}

// parseStructured locates a fenced JSON block (or treats the whole text as
// JSON) and maps it to the intermediate form. Unknown enum names fall back to
// safe defaults, never an error.
func parseStructured(text string) (*parsed, bool) {
	candidate := extractFencedBlock(text)
	if candidate == "" {
		candidate = strings.TrimSpace(text)
	}
	if candidate == "" || (candidate[0] != '{' && candidate[0] != '[') {
		return nil, false
	}

	var resp structuredResponse
	if err := json.Unmarshal([]byte(candidate), &resp); err != nil {
		return nil, false
	}

	p := &parsed{summary: strings.TrimSpace(resp.Summary)}

	for _, issue := range resp.Issues {
		if strings.TrimSpace(issue.Title) == "" {
			continue
		}
		mapped := types.Issue{
			Title:          strings.TrimSpace(issue.Title),
			Description:    strings.TrimSpace(issue.Description),
			Severity:       types.ParseSeverity(issue.Severity),
			Category:       types.ParseIssueCategory(issue.Category),
			SuggestedFixes: issue.SuggestedFixes,
		}
		if mapped.SuggestedFixes == nil && issue.SuggestedFix != "" {
			mapped.SuggestedFixes = []string{issue.SuggestedFix}
		}
		sourceURL := issue.Source
		if sourceURL == "" {
			sourceURL = issue.File
		}
		if sourceURL != "" || issue.Line > 0 {
			mapped.Source = &types.SourceLocation{URL: sourceURL, Line: issue.Line}
		}
		p.issues = append(p.issues, mapped)
	}

	for _, rec := range resp.Recommendations {
		if strings.TrimSpace(rec.Title) == "" {
			continue
		}
		mapped := types.Recommendation{
			Title:       strings.TrimSpace(rec.Title),
			Description: strings.TrimSpace(rec.Description),
			Type:        types.ParseRecommendationType(rec.Type),
			Priority:    types.ParsePriority(rec.Priority),
			Steps:       rec.Steps,
			CodeExcerpt: rec.CodeExcerpt,
		}
		if mapped.CodeExcerpt == "" {
			mapped.CodeExcerpt = rec.Code
		}
		p.recommendations = append(p.recommendations, mapped)
	}

	if resp.Performance != nil {
		perf := &types.PerformanceAssessment{
			Grade: strings.ToUpper(strings.TrimSpace(resp.Performance.Grade)),
			Score: resp.Performance.Score,
		}
		for _, metric := range resp.Performance.Metrics {
			name := metric.Metric
			if name == "" {
				name = metric.Name
			}
			if name == "" {
				continue
			}
			perf.Metrics = append(perf.Metrics, types.MetricAssessment{
				Metric:     name,
				Value:      metric.Value,
				Assessment: metric.Assessment,
			})
		}
		p.performance = perf
	}

	if !p.relevant() {
		return nil, false
	}
	return p, true
}

// extractFencedBlock returns the contents of the first fenced code block,
// tolerating a "json" language tag. Empty when no complete fence exists.
func extractFencedBlock(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return ""
	}
	rest := text[start+3:]
	if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
		tag := strings.TrimSpace(rest[:newline])
		if tag == "" || strings.EqualFold(tag, "json") {
			rest = rest[newline+1:]
		} else {
			return "" // fenced block holds something else (code excerpt etc.)
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
