package telemetry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelabs/webscope/pkg/config"
	"github.com/probelabs/webscope/pkg/types"
)

func newTestAggregator(consoleMax, networkMax, perfMax int) *Aggregator {
	return NewAggregator(config.TelemetryConfig{
		MaxConsoleMessages:    consoleMax,
		MaxNetworkRequests:    networkMax,
		MaxPerformanceSamples: perfMax,
		CaptureWindow:         time.Hour,
	})
}

func TestBufferEvictionKeepsMostRecent(t *testing.T) {
	agg := newTestAggregator(5, 5, 5)

	for i := 0; i < 12; i++ {
		agg.AppendConsoleMessage("s1", types.ConsoleMessage{
			ID:        fmt.Sprintf("msg-%d", i),
			Timestamp: time.Now(),
			Level:     types.LogInfo,
			Text:      fmt.Sprintf("message %d", i),
		})
	}

	messages := agg.ConsoleMessages("s1", 0)
	require.Len(t, messages, 5)
	// Oldest evicted first: the survivors are 7..11 in insertion order.
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("msg-%d", i+7), msg.ID)
	}
}

func TestQueryWindowFiltersOldRecords(t *testing.T) {
	agg := newTestAggregator(10, 10, 10)
	now := time.Now()

	agg.AppendConsoleMessage("s1", types.ConsoleMessage{ID: "old", Timestamp: now.Add(-2 * time.Hour), Level: types.LogError})
	agg.AppendConsoleMessage("s1", types.ConsoleMessage{ID: "recent", Timestamp: now.Add(-5 * time.Minute), Level: types.LogError})

	within := agg.ConsoleMessages("s1", time.Hour)
	require.Len(t, within, 1)
	assert.Equal(t, "recent", within[0].ID)

	all := agg.ConsoleMessages("s1", 0)
	assert.Len(t, all, 2)
}

func TestSnapshotReflectsOneInstant(t *testing.T) {
	agg := newTestAggregator(100, 100, 100)
	now := time.Now()

	agg.AppendConsoleMessage("s1", types.ConsoleMessage{ID: "c1", Timestamp: now, Level: types.LogError})
	agg.AppendNetworkRequest("s1", types.NetworkRequest{ID: "n1", Timestamp: now, URL: "https://example.com", StatusCode: 200})
	agg.AppendPerformanceSample("s1", types.PerformanceSample{ID: "p1", Timestamp: now})

	snapshot := agg.Snapshot("s1", SnapshotOptions{Window: time.Hour})

	assert.Len(t, snapshot.ConsoleMessages, 1)
	assert.Len(t, snapshot.NetworkRequests, 1)
	assert.Len(t, snapshot.PerformanceSamples, 1)
	assert.Equal(t, "s1", snapshot.SessionID)
	assert.NotEmpty(t, snapshot.ID)
	assert.False(t, snapshot.CapturedAt.IsZero())

	// Records appended after the snapshot never appear in it.
	agg.AppendConsoleMessage("s1", types.ConsoleMessage{ID: "c2", Timestamp: time.Now(), Level: types.LogError})
	assert.Len(t, snapshot.ConsoleMessages, 1)
}

func TestSnapshotWindowExcludesOldRecords(t *testing.T) {
	agg := newTestAggregator(100, 100, 100)
	now := time.Now()

	agg.AppendConsoleMessage("s1", types.ConsoleMessage{ID: "old", Timestamp: now.Add(-3 * time.Hour), Level: types.LogError})
	agg.AppendConsoleMessage("s1", types.ConsoleMessage{ID: "new", Timestamp: now, Level: types.LogError})

	snapshot := agg.Snapshot("s1", SnapshotOptions{Window: time.Hour})
	require.Len(t, snapshot.ConsoleMessages, 1)
	assert.Equal(t, "new", snapshot.ConsoleMessages[0].ID)
}

func TestSnapshotURLFilter(t *testing.T) {
	agg := newTestAggregator(100, 100, 100)
	now := time.Now()

	agg.AppendNetworkRequest("s1", types.NetworkRequest{ID: "api", Timestamp: now, URL: "https://api.example.com/users"})
	agg.AppendNetworkRequest("s1", types.NetworkRequest{ID: "cdn", Timestamp: now, URL: "https://cdn.example.com/app.js"})

	snapshot := agg.Snapshot("s1", SnapshotOptions{Window: time.Hour, URLFilter: "*api.example.com*"})
	require.Len(t, snapshot.NetworkRequests, 1)
	assert.Equal(t, "api", snapshot.NetworkRequests[0].ID)
}

func TestStatisticsScenario(t *testing.T) {
	agg := newTestAggregator(100, 100, 100)
	now := time.Now()

	for i := 0; i < 3; i++ {
		agg.AppendConsoleMessage("fresh", types.ConsoleMessage{Timestamp: now, Level: types.LogError, Text: "boom"})
	}
	agg.AppendConsoleMessage("fresh", types.ConsoleMessage{Timestamp: now, Level: types.LogWarning, Text: "careful"})
	agg.AppendNetworkRequest("fresh", types.NetworkRequest{Timestamp: now, URL: "https://example.com/api", StatusCode: 500})

	stats := agg.Statistics("fresh")
	assert.Equal(t, 3, stats.ConsoleErrors)
	assert.Equal(t, 1, stats.ConsoleWarnings)
	assert.Equal(t, 1, stats.FailedNetworkRequests)
	assert.Equal(t, 1.0, stats.FailureRate)

	snapshot := agg.Snapshot("fresh", SnapshotOptions{Window: time.Hour})
	total := len(snapshot.ConsoleMessages) + len(snapshot.NetworkRequests) + len(snapshot.PerformanceSamples)
	assert.Equal(t, 5, total)
}

func TestStatisticsDerivedAggregates(t *testing.T) {
	agg := newTestAggregator(100, 100, 100)
	now := time.Now()

	agg.AppendNetworkRequest("s1", types.NetworkRequest{Timestamp: now, URL: "a", StatusCode: 200, Duration: 100 * time.Millisecond})
	agg.AppendNetworkRequest("s1", types.NetworkRequest{Timestamp: now, URL: "b", StatusCode: 200, Duration: 300 * time.Millisecond})
	agg.AppendPerformanceSample("s1", types.PerformanceSample{Timestamp: now, CPUPercent: 40, MemoryBytes: 100})
	agg.AppendPerformanceSample("s1", types.PerformanceSample{Timestamp: now, CPUPercent: 90, MemoryBytes: 50})

	stats := agg.Statistics("s1")
	assert.Equal(t, 200*time.Millisecond, stats.MeanResponseTime)
	assert.Equal(t, 90.0, stats.PeakCPUPercent)
	assert.Equal(t, int64(100), stats.PeakMemoryBytes)
	assert.Equal(t, 0.0, stats.FailureRate)
}

func TestClearIsIdempotent(t *testing.T) {
	agg := newTestAggregator(10, 10, 10)
	agg.AppendConsoleMessage("s1", types.ConsoleMessage{Timestamp: time.Now(), Level: types.LogInfo})

	agg.Clear("s1")
	assert.Empty(t, agg.ConsoleMessages("s1", 0))

	agg.Clear("s1")      // second clear is a no-op
	agg.Clear("unknown") // clearing an unknown session is a no-op
}

func TestConcurrentAppendsAcrossSessions(t *testing.T) {
	agg := newTestAggregator(1000, 1000, 1000)

	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		sessionID := fmt.Sprintf("s%d", s)
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					agg.AppendConsoleMessage(id, types.ConsoleMessage{Timestamp: time.Now(), Level: types.LogInfo})
					agg.AppendNetworkRequest(id, types.NetworkRequest{Timestamp: time.Now(), URL: "https://example.com"})
					_ = agg.Snapshot(id, SnapshotOptions{Window: time.Hour})
				}
			}(sessionID)
		}
	}
	wg.Wait()

	for s := 0; s < 4; s++ {
		stats := agg.Statistics(fmt.Sprintf("s%d", s))
		assert.Equal(t, 200, stats.TotalConsoleMessages)
		assert.Equal(t, 200, stats.TotalNetworkRequests)
	}
}

func TestAppendAssignsIDs(t *testing.T) {
	agg := newTestAggregator(10, 10, 10)
	agg.AppendConsoleMessage("s1", types.ConsoleMessage{Timestamp: time.Now(), Level: types.LogInfo})
	messages := agg.ConsoleMessages("s1", 0)
	require.Len(t, messages, 1)
	assert.NotEmpty(t, messages[0].ID)
}
