package session

import (
	"time"

	"github.com/probelabs/webscope/pkg/types"
)

// computeStatistics derives a session's running statistics from its attached
// snapshots and analysis results. Snapshots of one session may overlap in
// time, so telemetry records are counted once by id.
func computeStatistics(s *types.DebugSession) types.SessionStatistics {
	var stats types.SessionStatistics
	stats.SnapshotCount = len(s.Snapshots)
	stats.AnalysisCount = len(s.AnalysisResults)

	seenConsole := make(map[string]bool)
	seenNetwork := make(map[string]bool)
	seenSamples := make(map[string]bool)

	var totalDuration time.Duration
	var timed int

	for _, snapshot := range s.Snapshots {
		for _, msg := range snapshot.ConsoleMessages {
			if seenConsole[msg.ID] {
				continue
			}
			seenConsole[msg.ID] = true
			stats.TotalConsoleMessages++
			switch msg.Level {
			case types.LogError:
				stats.ConsoleErrors++
			case types.LogWarning:
				stats.ConsoleWarnings++
			}
		}
		for _, req := range snapshot.NetworkRequests {
			if seenNetwork[req.ID] {
				continue
			}
			seenNetwork[req.ID] = true
			stats.TotalNetworkRequests++
			if req.IsError() {
				stats.FailedNetworkRequests++
			}
			if req.Duration > 0 {
				totalDuration += req.Duration
				timed++
			}
		}
		for _, sample := range snapshot.PerformanceSamples {
			if seenSamples[sample.ID] {
				continue
			}
			seenSamples[sample.ID] = true
			stats.PerformanceSamples++
			if sample.CPUPercent > stats.PeakCPUPercent {
				stats.PeakCPUPercent = sample.CPUPercent
			}
			if sample.MemoryBytes > stats.PeakMemoryBytes {
				stats.PeakMemoryBytes = sample.MemoryBytes
			}
		}
	}

	if stats.TotalNetworkRequests > 0 {
		stats.FailureRate = float64(stats.FailedNetworkRequests) / float64(stats.TotalNetworkRequests)
	}
	if timed > 0 {
		stats.MeanResponseTime = totalDuration / time.Duration(timed)
	}

	for _, result := range s.AnalysisResults {
		stats.TotalTokensUsed += result.TokensUsed
	}

	return stats
}
