// Package telemetry buffers per-session browser events and assembles
// consistent point-in-time snapshots. Buffers are bounded; the oldest entries
// are evicted first. Locking is scoped per session id so sessions never
// contend with each other.
package telemetry

import (
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/probelabs/webscope/pkg/config"
	"github.com/probelabs/webscope/pkg/types"
)

// sessionStore holds one session's three event buffers. mu guards all three
// so snapshot assembly reads them as of one instant.
type sessionStore struct {
	mu          sync.RWMutex
	console     *ring[types.ConsoleMessage]
	network     *ring[types.NetworkRequest]
	performance *ring[types.PerformanceSample]
}

// Aggregator is the process-wide telemetry store, keyed by session id.
// Stores are created lazily on first append. Safe for concurrent use.
type Aggregator struct {
	mu       sync.RWMutex // guards the sessions map only
	sessions map[string]*sessionStore
	limits   config.TelemetryConfig
}

// NewAggregator creates an aggregator with the given buffer limits.
func NewAggregator(limits config.TelemetryConfig) *Aggregator {
	if limits.MaxConsoleMessages <= 0 {
		limits.MaxConsoleMessages = 1000
	}
	if limits.MaxNetworkRequests <= 0 {
		limits.MaxNetworkRequests = 500
	}
	if limits.MaxPerformanceSamples <= 0 {
		limits.MaxPerformanceSamples = 100
	}
	return &Aggregator{
		sessions: make(map[string]*sessionStore),
		limits:   limits,
	}
}

// store returns the session's store, creating it on first use.
func (a *Aggregator) store(sessionID string) *sessionStore {
	a.mu.RLock()
	s, ok := a.sessions[sessionID]
	a.mu.RUnlock()
	if ok {
		return s
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok = a.sessions[sessionID]; ok {
		return s
	}
	s = &sessionStore{
		console:     newRing[types.ConsoleMessage](a.limits.MaxConsoleMessages),
		network:     newRing[types.NetworkRequest](a.limits.MaxNetworkRequests),
		performance: newRing[types.PerformanceSample](a.limits.MaxPerformanceSamples),
	}
	a.sessions[sessionID] = s
	return s
}

// AppendConsoleMessage buffers a console message for the session, assigning an
// id if the instrumentation layer did not.
func (a *Aggregator) AppendConsoleMessage(sessionID string, msg types.ConsoleMessage) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	s := a.store(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console.append(msg)
}

// AppendNetworkRequest buffers a finalized network request for the session.
func (a *Aggregator) AppendNetworkRequest(sessionID string, req types.NetworkRequest) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	s := a.store(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network.append(req)
}

// AppendPerformanceSample buffers a performance sample for the session.
func (a *Aggregator) AppendPerformanceSample(sessionID string, sample types.PerformanceSample) {
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	s := a.store(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.performance.append(sample)
}

// inWindow keeps records whose age relative to now is within the window.
// A zero window keeps everything.
func inWindow(now, ts time.Time, window time.Duration) bool {
	if window <= 0 {
		return true
	}
	return now.Sub(ts) <= window
}

// ConsoleMessages returns the session's buffered console messages, oldest
// first, filtered to the trailing window. Zero window returns everything.
func (a *Aggregator) ConsoleMessages(sessionID string, window time.Duration) []types.ConsoleMessage {
	s := a.store(sessionID)
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.console.filtered(func(m types.ConsoleMessage) bool {
		return inWindow(now, m.Timestamp, window)
	})
}

// NetworkRequests returns the session's buffered network requests, oldest
// first, filtered to the trailing window.
func (a *Aggregator) NetworkRequests(sessionID string, window time.Duration) []types.NetworkRequest {
	s := a.store(sessionID)
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network.filtered(func(r types.NetworkRequest) bool {
		return inWindow(now, r.Timestamp, window)
	})
}

// NetworkRequestsMatching additionally filters by a URL glob pattern, e.g.
// "*api.example.com*". An empty or invalid pattern matches everything.
func (a *Aggregator) NetworkRequestsMatching(sessionID, urlGlob string, window time.Duration) []types.NetworkRequest {
	matcher := compileURLGlob(urlGlob)
	s := a.store(sessionID)
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network.filtered(func(r types.NetworkRequest) bool {
		return inWindow(now, r.Timestamp, window) && matcher(r.URL)
	})
}

// PerformanceSamples returns the session's buffered samples, oldest first,
// filtered to the trailing window.
func (a *Aggregator) PerformanceSamples(sessionID string, window time.Duration) []types.PerformanceSample {
	s := a.store(sessionID)
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.performance.filtered(func(p types.PerformanceSample) bool {
		return inWindow(now, p.Timestamp, window)
	})
}

// SnapshotOptions controls snapshot assembly.
type SnapshotOptions struct {
	// Window is the trailing capture window. Zero uses the configured default.
	Window time.Duration

	// URLFilter is an optional glob restricting network requests by URL.
	URLFilter string

	// PageHTML, when non-empty, is summarized into the snapshot's DOM field.
	PageHTML string
}

// Snapshot extracts one consistent point-in-time view of the session's
// telemetry. All three collections are read under the session's exclusive
// section, so no record appended after the call is included. This is the
// aggregator's core consistency contract.
func (a *Aggregator) Snapshot(sessionID string, opts SnapshotOptions) *types.Snapshot {
	window := opts.Window
	if window <= 0 {
		window = a.limits.CaptureWindow
	}
	matcher := compileURLGlob(opts.URLFilter)

	s := a.store(sessionID)
	now := time.Now()

	s.mu.Lock()
	console := s.console.filtered(func(m types.ConsoleMessage) bool {
		return inWindow(now, m.Timestamp, window)
	})
	network := s.network.filtered(func(r types.NetworkRequest) bool {
		return inWindow(now, r.Timestamp, window) && matcher(r.URL)
	})
	performance := s.performance.filtered(func(p types.PerformanceSample) bool {
		return inWindow(now, p.Timestamp, window)
	})
	s.mu.Unlock()

	snapshot := &types.Snapshot{
		ID:                 uuid.New().String(),
		SessionID:          sessionID,
		CapturedAt:         now,
		ConsoleMessages:    console,
		NetworkRequests:    network,
		PerformanceSamples: performance,
	}
	if opts.PageHTML != "" {
		if dom, err := SummarizeDOM(opts.PageHTML); err == nil {
			snapshot.DOM = dom
		}
	}
	return snapshot
}

// Statistics computes aggregate counts over the session's current buffer
// contents.
func (a *Aggregator) Statistics(sessionID string) types.SessionStatistics {
	s := a.store(sessionID)
	s.mu.RLock()
	console := s.console.all()
	network := s.network.all()
	performance := s.performance.all()
	s.mu.RUnlock()

	var stats types.SessionStatistics
	stats.TotalConsoleMessages = len(console)
	for _, m := range console {
		switch m.Level {
		case types.LogError:
			stats.ConsoleErrors++
		case types.LogWarning:
			stats.ConsoleWarnings++
		}
	}

	stats.TotalNetworkRequests = len(network)
	var totalDuration time.Duration
	var timed int
	for _, r := range network {
		if r.IsError() {
			stats.FailedNetworkRequests++
		}
		if r.Duration > 0 {
			totalDuration += r.Duration
			timed++
		}
	}
	if stats.TotalNetworkRequests > 0 {
		stats.FailureRate = float64(stats.FailedNetworkRequests) / float64(stats.TotalNetworkRequests)
	}
	if timed > 0 {
		stats.MeanResponseTime = totalDuration / time.Duration(timed)
	}

	stats.PerformanceSamples = len(performance)
	for _, p := range performance {
		if p.CPUPercent > stats.PeakCPUPercent {
			stats.PeakCPUPercent = p.CPUPercent
		}
		if p.MemoryBytes > stats.PeakMemoryBytes {
			stats.PeakMemoryBytes = p.MemoryBytes
		}
	}

	return stats
}

// Clear drops all buffered data for the session. Idempotent; clearing an
// unknown session is a no-op.
func (a *Aggregator) Clear(sessionID string) {
	a.mu.RLock()
	s, ok := a.sessions[sessionID]
	a.mu.RUnlock()
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console.clear()
	s.network.clear()
	s.performance.clear()
}

// Remove drops the session's store entirely, releasing its buffers.
func (a *Aggregator) Remove(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
}

// compileURLGlob returns a matcher for the glob pattern. Empty or invalid
// patterns match everything.
func compileURLGlob(pattern string) func(string) bool {
	if pattern == "" {
		return func(string) bool { return true }
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return func(string) bool { return true }
	}
	return g.Match
}
