// Package parser interprets raw model responses into structured analysis
// results. It tries a structured (fenced JSON) reading first, falls back to
// heuristic section extraction from free text, and finally degrades to using
// the first paragraph as a summary. The last path never fails: whatever the
// model returned, the caller gets a usable AnalysisResult.
package parser

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/probelabs/webscope/pkg/types"
)

// fallbackSummaryLimit bounds the summary taken from unparseable text.
const fallbackSummaryLimit = 500

// Parse interprets a raw model response. It never returns an error; the
// contract of last resort is a result whose summary is the response's first
// paragraph with empty issues and recommendations.
func Parse(raw, model string, tokensUsed int) *types.AnalysisResult {
	result := &types.AnalysisResult{
		ID:              uuid.New().String(),
		AnalyzedAt:      time.Now(),
		Model:           model,
		TokensUsed:      tokensUsed,
		Issues:          []types.Issue{},
		Recommendations: []types.Recommendation{},
	}

	text := stripThinking(raw)

	if parsed, ok := parseStructured(text); ok {
		result.Strategy = types.ParseStructured
		result.Status = types.AnalysisCompleted
		applyParsed(result, parsed)
		return result
	}

	if parsed, ok := parseHeuristic(text); ok {
		result.Strategy = types.ParseHeuristic
		result.Status = types.AnalysisCompleted
		applyParsed(result, parsed)
		return result
	}

	result.Strategy = types.ParseFallback
	result.Status = types.AnalysisPartiallyCompleted
	result.Summary = firstParagraph(text)
	if result.Summary == "" {
		result.Status = types.AnalysisFailed
		result.Summary = "The model returned no interpretable analysis."
	}
	return result
}

// parsed is the strategy-independent intermediate form.
type parsed struct {
	summary         string
	issues          []types.Issue
	recommendations []types.Recommendation
	performance     *types.PerformanceAssessment
}

// relevant reports whether the parse produced anything worth keeping.
func (p *parsed) relevant() bool {
	return p.summary != "" || len(p.issues) > 0 || len(p.recommendations) > 0 || p.performance != nil
}

func applyParsed(result *types.AnalysisResult, p *parsed) {
	result.Summary = p.summary
	if p.issues != nil {
		result.Issues = p.issues
	}
	if p.recommendations != nil {
		result.Recommendations = p.recommendations
	}
	result.Performance = p.performance
}

// stripThinking removes <thinking>...</thinking> blocks some models emit
// before their answer.
func stripThinking(text string) string {
	for {
		start := strings.Index(text, "<thinking>")
		if start < 0 {
			return text
		}
		end := strings.Index(text[start:], "</thinking>")
		if end < 0 {
			return text[:start]
		}
		text = text[:start] + text[start+end+len("</thinking>"):]
	}
}

// firstParagraph returns the text up to the first blank line, bounded by
// fallbackSummaryLimit runes.
func firstParagraph(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if idx := strings.Index(text, sep); idx >= 0 {
			text = text[:idx]
			break
		}
	}
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > fallbackSummaryLimit {
		text = string(runes[:fallbackSummaryLimit]) + "…"
	}
	return text
}
