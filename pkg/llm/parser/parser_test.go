package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelabs/webscope/pkg/types"
)

func TestParseStructuredResponse(t *testing.T) {
	raw := "Here is the analysis:\n```json\n" + `{
  "summary": "The profile page breaks on load.",
  "issues": [
    {
      "title": "Uncaught TypeError in profile loader",
      "description": "profile is undefined when the API call fails",
      "severity": "high",
      "category": "javascript_error",
      "suggested_fixes": ["guard the profile lookup"],
      "source": "https://app.example.com/static/app.js",
      "line": 1204
    }
  ],
  "recommendations": [
    {
      "title": "Retry the profile fetch",
      "type": "code_fix",
      "priority": "high",
      "steps": ["wrap fetch in retry", "surface the error state"]
    }
  ],
  "performance": {
    "grade": "b",
    "score": 82,
    "metrics": [
      {"metric": "LCP", "value": "2.1s", "assessment": "good"}
    ]
  }
}` + "\n```\n"

	result := Parse(raw, "demo-model", 900)
	assert.Equal(t, types.ParseStructured, result.Strategy)
	assert.Equal(t, types.AnalysisCompleted, result.Status)
	assert.Equal(t, "demo-model", result.Model)
	assert.Equal(t, 900, result.TokensUsed)
	assert.Equal(t, "The profile page breaks on load.", result.Summary)

	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, "Uncaught TypeError in profile loader", issue.Title)
	assert.Equal(t, types.SeverityHigh, issue.Severity)
	assert.Equal(t, types.CategoryJavaScriptError, issue.Category)
	assert.Equal(t, []string{"guard the profile lookup"}, issue.SuggestedFixes)
	require.NotNil(t, issue.Source)
	assert.Equal(t, 1204, issue.Source.Line)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, types.RecommendationCodeFix, rec.Type)
	assert.Equal(t, types.PriorityHigh, rec.Priority)
	assert.Len(t, rec.Steps, 2)

	require.NotNil(t, result.Performance)
	assert.Equal(t, "B", result.Performance.Grade)
	assert.Equal(t, 82.0, result.Performance.Score)
	require.Len(t, result.Performance.Metrics, 1)
	assert.Equal(t, "LCP", result.Performance.Metrics[0].Metric)
}

func TestParseStructuredUnknownEnumsDefault(t *testing.T) {
	raw := "```json\n" + `{
  "summary": "s",
  "issues": [{"title": "weird", "severity": "catastrophic", "category": "cosmic"}],
  "recommendations": [{"title": "do something", "type": "magic", "priority": "whenever"}]
}` + "\n```"

	result := Parse(raw, "m", 0)
	require.Equal(t, types.ParseStructured, result.Strategy)
	assert.Equal(t, types.SeverityMedium, result.Issues[0].Severity)
	assert.Equal(t, types.CategoryOther, result.Issues[0].Category)
	assert.Equal(t, types.RecommendationBestPractice, result.Recommendations[0].Type)
	assert.Equal(t, types.PriorityMedium, result.Recommendations[0].Priority)
}

func TestParseBareJSONWithoutFence(t *testing.T) {
	result := Parse(`{"summary": "no fence needed"}`, "m", 0)
	assert.Equal(t, types.ParseStructured, result.Strategy)
	assert.Equal(t, "no fence needed", result.Summary)
}

func TestParseHeuristicSections(t *testing.T) {
	raw := `## Summary
The checkout page loses its cart state.

## Issues
1. Null pointer in init
Fix: add null check
2. Request to /api/cart failed with 500

## Recommendations
1. Add input validation

## Performance
Grade: B+
Score: 78
- LCP: needs improvement
`

	result := Parse(raw, "m", 0)
	assert.Equal(t, types.ParseHeuristic, result.Strategy)
	assert.Equal(t, types.AnalysisCompleted, result.Status)
	assert.Equal(t, "The checkout page loses its cart state.", result.Summary)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, "Null pointer in init", result.Issues[0].Title)
	assert.Equal(t, types.CategoryJavaScriptError, result.Issues[0].Category)
	assert.Equal(t, []string{"add null check"}, result.Issues[0].SuggestedFixes)
	assert.Equal(t, types.CategoryNetworkError, result.Issues[1].Category)

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "Add input validation", result.Recommendations[0].Title)
	assert.Equal(t, types.PriorityMedium, result.Recommendations[0].Priority)
	assert.Equal(t, types.RecommendationBestPractice, result.Recommendations[0].Type)

	require.NotNil(t, result.Performance)
	assert.Equal(t, "B+", result.Performance.Grade)
	assert.Equal(t, 78.0, result.Performance.Score)
	require.Len(t, result.Performance.Metrics, 1)
	assert.Equal(t, "LCP", result.Performance.Metrics[0].Metric)
}

func TestParseHeuristicContinuationSharpensClassification(t *testing.T) {
	raw := `## Issues
- Page stalls on load
The main thread is blocked by a memory leak in the event listeners.
`
	result := Parse(raw, "m", 0)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, types.CategoryMemoryLeak, result.Issues[0].Category)
	assert.Contains(t, result.Issues[0].Description, "memory leak")
}

func TestParseFallbackFirstParagraph(t *testing.T) {
	raw := "The page seems mostly fine, though I could not pinpoint a root cause.\n\nMore rambling follows here."
	result := Parse(raw, "m", 0)
	assert.Equal(t, types.ParseFallback, result.Strategy)
	assert.Equal(t, types.AnalysisPartiallyCompleted, result.Status)
	assert.Equal(t, "The page seems mostly fine, though I could not pinpoint a root cause.", result.Summary)
	assert.Empty(t, result.Issues)
	assert.Empty(t, result.Recommendations)
}

func TestParseEmptyInputNeverFails(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  ", "<thinking>only thoughts</thinking>"} {
		result := Parse(raw, "m", 0)
		require.NotNil(t, result)
		assert.Equal(t, types.ParseFallback, result.Strategy)
		assert.Equal(t, types.AnalysisFailed, result.Status)
		assert.NotEmpty(t, result.Summary)
	}
}

func TestParseStripsThinkingBlocks(t *testing.T) {
	raw := "<thinking>let me reason about this</thinking>{\"summary\": \"clean answer\"}"
	result := Parse(raw, "m", 0)
	assert.Equal(t, types.ParseStructured, result.Strategy)
	assert.Equal(t, "clean answer", result.Summary)
}

func TestParseIgnoresNonJSONFence(t *testing.T) {
	raw := "## Summary\nStack trace attached.\n\n```go\npanic(\"boom\")\n```\n"
	result := Parse(raw, "m", 0)
	assert.Equal(t, types.ParseHeuristic, result.Strategy)
	assert.Contains(t, result.Summary, "Stack trace attached.")
}

func TestParseMalformedJSONFallsThrough(t *testing.T) {
	raw := "```json\n{\"summary\": \"truncated\n```"
	result := Parse(raw, "m", 0)
	assert.Equal(t, types.ParseFallback, result.Strategy)
}

func TestFirstParagraphBounded(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "word "
	}
	result := Parse(long, "m", 0)
	assert.Equal(t, types.ParseFallback, result.Strategy)
	assert.LessOrEqual(t, len([]rune(result.Summary)), fallbackSummaryLimit+1)
}
