package types

import "time"

// SessionStatistics is the running aggregate over a session's buffered
// telemetry and attached analyses. Recomputed incrementally on append and in
// full on export.
type SessionStatistics struct {
	TotalConsoleMessages  int           `json:"total_console_messages"`
	ConsoleErrors         int           `json:"console_errors"`
	ConsoleWarnings       int           `json:"console_warnings"`
	TotalNetworkRequests  int           `json:"total_network_requests"`
	FailedNetworkRequests int           `json:"failed_network_requests"`
	FailureRate           float64       `json:"failure_rate"`
	MeanResponseTime      time.Duration `json:"mean_response_time_ms"`
	PerformanceSamples    int           `json:"performance_samples"`
	PeakCPUPercent        float64       `json:"peak_cpu_percent"`
	PeakMemoryBytes       int64         `json:"peak_memory_bytes"`
	SnapshotCount         int           `json:"snapshot_count"`
	AnalysisCount         int           `json:"analysis_count"`
	TotalTokensUsed       int           `json:"total_tokens_used"`
}

// DebugSession is one bounded debugging engagement against a target URL.
// Mutated only through the session manager, which serializes access.
type DebugSession struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	TargetURL       string            `json:"target_url,omitempty"`
	Status          SessionStatus     `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	EndedAt         *time.Time        `json:"ended_at,omitempty"`
	Snapshots       []*Snapshot       `json:"snapshots"`
	AnalysisResults []*AnalysisResult `json:"analysis_results"`
	Tags            map[string]string `json:"tags,omitempty"`
	Statistics      SessionStatistics `json:"statistics"`
}

// IsTerminal reports whether the session can accept no further transitions.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionArchived
}
