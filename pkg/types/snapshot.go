package types

import "time"

// DOMSummary is a lightweight structural summary of the page DOM at capture
// time. Optional; filled only when the caller supplied page HTML.
type DOMSummary struct {
	Title        string         `json:"title,omitempty"`
	NodeCount    int            `json:"node_count"`
	MaxDepth     int            `json:"max_depth"`
	ElementCount map[string]int `json:"element_count,omitempty"`
}

// Snapshot is an immutable point-in-time extract of a session's telemetry.
// All three collections were read under one exclusive section, so they
// reflect the same instant. CapturedAt is >= every contained event timestamp
// minus the capture window used to build it.
type Snapshot struct {
	ID                 string              `json:"id"`
	SessionID          string              `json:"session_id"`
	CapturedAt         time.Time           `json:"captured_at"`
	ConsoleMessages    []ConsoleMessage    `json:"console_messages"`
	NetworkRequests    []NetworkRequest    `json:"network_requests"`
	PerformanceSamples []PerformanceSample `json:"performance_samples"`
	DOM                *DOMSummary         `json:"dom,omitempty"`
}

// LatestPerformanceSample returns the most recent sample in the snapshot, or
// nil if none were captured.
func (s *Snapshot) LatestPerformanceSample() *PerformanceSample {
	if len(s.PerformanceSamples) == 0 {
		return nil
	}
	latest := &s.PerformanceSamples[0]
	for i := 1; i < len(s.PerformanceSamples); i++ {
		if s.PerformanceSamples[i].Timestamp.After(latest.Timestamp) {
			latest = &s.PerformanceSamples[i]
		}
	}
	return latest
}
