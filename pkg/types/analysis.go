package types

import "time"

// Issue is a single diagnosed problem extracted from a model response.
type Issue struct {
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Severity       Severity        `json:"severity"`
	Category       IssueCategory   `json:"category"`
	SuggestedFixes []string        `json:"suggested_fixes,omitempty"`
	Source         *SourceLocation `json:"source,omitempty"`
}

// Recommendation is a single proposed improvement extracted from a model
// response.
type Recommendation struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Type        RecommendationType `json:"type"`
	Priority    Priority           `json:"priority"`
	Steps       []string           `json:"steps,omitempty"`
	CodeExcerpt string             `json:"code_excerpt,omitempty"`
}

// MetricAssessment is the model's judgement of one performance metric.
type MetricAssessment struct {
	Metric     string `json:"metric"`
	Value      string `json:"value,omitempty"`
	Assessment string `json:"assessment"`
}

// PerformanceAssessment is the model's overall performance judgement.
type PerformanceAssessment struct {
	Grade   string             `json:"grade,omitempty"` // letter grade, A through F
	Score   float64            `json:"score,omitempty"` // 0-100
	Metrics []MetricAssessment `json:"metrics,omitempty"`
}

// ParseStrategy records which parsing path produced an AnalysisResult.
type ParseStrategy string

const (
	ParseStructured ParseStrategy = "structured" // fenced or whole-text JSON parsed cleanly
	ParseHeuristic  ParseStrategy = "heuristic"  // section/keyword extraction from free text
	ParseFallback   ParseStrategy = "fallback"   // first paragraph used as summary, nothing else
)

// AnalysisResult is the structured outcome of one model analysis run.
// Append-only once attached to a session; children are never mutated.
type AnalysisResult struct {
	ID              string                 `json:"id"`
	SessionID       string                 `json:"session_id,omitempty"`
	AnalyzedAt      time.Time              `json:"analyzed_at"`
	Model           string                 `json:"model,omitempty"`
	Status          AnalysisStatus         `json:"status"`
	Strategy        ParseStrategy          `json:"strategy,omitempty"`
	Summary         string                 `json:"summary"`
	Issues          []Issue                `json:"issues"`
	Recommendations []Recommendation       `json:"recommendations"`
	Performance     *PerformanceAssessment `json:"performance,omitempty"`
	TokensUsed      int                    `json:"tokens_used,omitempty"`
	Duration        time.Duration          `json:"duration_ms,omitempty"`
}
