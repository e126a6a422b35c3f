package types

import "strings"

// SessionStatus is the lifecycle state of a debug session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"    // SessionActive indicates the session is collecting telemetry.
	SessionPaused    SessionStatus = "paused"    // SessionPaused indicates collection is suspended and may resume.
	SessionCompleted SessionStatus = "completed" // SessionCompleted indicates the session has ended.
	SessionArchived  SessionStatus = "archived"  // SessionArchived indicates a completed session moved to cold storage. Terminal.
)

// LogLevel is the severity of a console message.
type LogLevel string

const (
	LogVerbose LogLevel = "verbose"
	LogDebug   LogLevel = "debug"
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// ParseLogLevel maps a name to a LogLevel, defaulting to LogInfo for
// unrecognized input.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose":
		return LogVerbose
	case "debug":
		return LogDebug
	case "info", "log":
		return LogInfo
	case "warning", "warn":
		return LogWarning
	case "error", "err":
		return LogError
	default:
		return LogInfo
	}
}

// Severity classifies how serious a diagnosed issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity maps a name to a Severity, defaulting to SeverityMedium for
// unrecognized input. Model output uses inconsistent casing, so matching is
// case-insensitive.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "minor", "trivial":
		return SeverityLow
	case "medium", "moderate":
		return SeverityMedium
	case "high", "major", "severe":
		return SeverityHigh
	case "critical", "blocker", "blocking", "fatal":
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// IssueCategory classifies what kind of problem an issue describes.
type IssueCategory string

const (
	CategoryJavaScriptError IssueCategory = "javascript_error"
	CategoryNetworkError    IssueCategory = "network_error"
	CategoryPerformance     IssueCategory = "performance"
	CategorySecurity        IssueCategory = "security"
	CategoryAccessibility   IssueCategory = "accessibility"
	CategoryMemoryLeak      IssueCategory = "memory_leak"
	CategoryOther           IssueCategory = "other"
)

// ParseIssueCategory maps a name to an IssueCategory, defaulting to
// CategoryOther for unrecognized input.
func ParseIssueCategory(s string) IssueCategory {
	switch normalizeEnumName(s) {
	case "javascripterror", "javascript", "jserror", "js":
		return CategoryJavaScriptError
	case "networkerror", "network", "http":
		return CategoryNetworkError
	case "performance", "perf":
		return CategoryPerformance
	case "security":
		return CategorySecurity
	case "accessibility", "a11y":
		return CategoryAccessibility
	case "memoryleak", "memory":
		return CategoryMemoryLeak
	default:
		return CategoryOther
	}
}

// RecommendationType classifies the kind of change a recommendation proposes.
type RecommendationType string

const (
	RecommendationCodeFix       RecommendationType = "code_fix"
	RecommendationOptimization  RecommendationType = "optimization"
	RecommendationConfiguration RecommendationType = "configuration"
	RecommendationArchitecture  RecommendationType = "architecture"
	RecommendationBestPractice  RecommendationType = "best_practice"
)

// ParseRecommendationType maps a name to a RecommendationType, defaulting to
// RecommendationBestPractice for unrecognized input.
func ParseRecommendationType(s string) RecommendationType {
	switch normalizeEnumName(s) {
	case "codefix", "fix", "bugfix":
		return RecommendationCodeFix
	case "optimization", "optimize":
		return RecommendationOptimization
	case "configuration", "config":
		return RecommendationConfiguration
	case "architecture", "refactor", "refactoring":
		return RecommendationArchitecture
	default:
		return RecommendationBestPractice
	}
}

// Priority orders recommendations by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority maps a name to a Priority, defaulting to PriorityMedium for
// unrecognized input.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "medium", "normal":
		return PriorityMedium
	case "high", "important":
		return PriorityHigh
	case "urgent", "immediate", "critical":
		return PriorityUrgent
	default:
		return PriorityMedium
	}
}

// AnalysisStatus is the lifecycle state of an analysis run.
type AnalysisStatus string

const (
	AnalysisPending            AnalysisStatus = "pending"
	AnalysisInProgress         AnalysisStatus = "in_progress"
	AnalysisCompleted          AnalysisStatus = "completed"
	AnalysisFailed             AnalysisStatus = "failed"
	AnalysisPartiallyCompleted AnalysisStatus = "partially_completed"
)

// normalizeEnumName lowercases and strips separators so "JavaScript Error",
// "javascript_error" and "javascript-error" all compare equal.
func normalizeEnumName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
