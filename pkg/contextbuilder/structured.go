package contextbuilder

import (
	"time"

	"github.com/probelabs/webscope/pkg/types"
)

// SlowRequest is one request above the slow threshold in a structured summary.
type SlowRequest struct {
	Method   string        `json:"method"`
	URL      string        `json:"url"`
	Duration time.Duration `json:"duration_ms"`
}

// StructuredContext carries the narrative context's information as typed
// aggregates for callers that avoid text parsing.
type StructuredContext struct {
	SessionID           string                   `json:"session_id"`
	CapturedAt          time.Time                `json:"captured_at"`
	ConsoleErrorCount   int                      `json:"console_error_count"`
	ConsoleWarningCount int                      `json:"console_warning_count"`
	NetworkRequestCount int                      `json:"network_request_count"`
	FailedRequestCount  int                      `json:"failed_request_count"`
	FailingURLs         []string                 `json:"failing_urls"`
	SlowRequests        []SlowRequest            `json:"slow_requests"`
	LatestPerformance   *types.PerformanceSample `json:"latest_performance,omitempty"`
	PerformanceFlags    []string                 `json:"performance_flags,omitempty"`
	DOM                 *types.DOMSummary        `json:"dom,omitempty"`
}

// BuildStructuredContext reduces the snapshot to typed aggregates: counts,
// distinct failing URLs in first-seen order, and the slow-request list.
func (b *Builder) BuildStructuredContext(snapshot *types.Snapshot) *StructuredContext {
	ctx := &StructuredContext{
		SessionID:  snapshot.SessionID,
		CapturedAt: snapshot.CapturedAt,
		DOM:        snapshot.DOM,
	}

	for _, msg := range snapshot.ConsoleMessages {
		switch msg.Level {
		case types.LogError:
			ctx.ConsoleErrorCount++
		case types.LogWarning:
			ctx.ConsoleWarningCount++
		}
	}

	seenFailing := make(map[string]bool)
	ctx.NetworkRequestCount = len(snapshot.NetworkRequests)
	for _, req := range snapshot.NetworkRequests {
		if req.IsError() {
			ctx.FailedRequestCount++
			if !seenFailing[req.URL] {
				seenFailing[req.URL] = true
				ctx.FailingURLs = append(ctx.FailingURLs, req.URL)
			}
		} else if req.Duration >= b.cfg.SlowRequestAbove {
			ctx.SlowRequests = append(ctx.SlowRequests, SlowRequest{
				Method:   req.Method,
				URL:      req.URL,
				Duration: req.Duration,
			})
		}
	}

	if sample := snapshot.LatestPerformanceSample(); sample != nil {
		ctx.LatestPerformance = sample
		ctx.PerformanceFlags = performanceFlags(sample)
	}

	return ctx
}
