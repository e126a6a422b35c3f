package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelabs/webscope/pkg/types"
)

func TestCreateSessionValidation(t *testing.T) {
	m := NewManager()

	_, err := m.CreateSession("", "https://example.com")
	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	_, err = m.CreateSession("   ", "https://example.com")
	assert.ErrorAs(t, err, &validation)

	sess, err := m.CreateSession("  checkout bug  ", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "checkout bug", sess.Name)
	assert.Equal(t, types.SessionActive, sess.Status)
	assert.NotEmpty(t, sess.ID)
	assert.NotNil(t, sess.Snapshots)
	assert.NotNil(t, sess.AnalysisResults)
}

func TestGetUnknownSession(t *testing.T) {
	m := NewManager()
	_, err := m.Get("missing")
	var notFound *types.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestLifecycleTransitions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(m *Manager, id string)
		op      func(m *Manager, id string) error
		wantErr bool
	}{
		{
			name:    "pause active",
			prepare: func(m *Manager, id string) {},
			op:      (*Manager).Pause,
		},
		{
			name:    "resume paused",
			prepare: func(m *Manager, id string) { _ = m.Pause(id) },
			op:      (*Manager).Resume,
		},
		{
			name:    "end active",
			prepare: func(m *Manager, id string) {},
			op:      (*Manager).End,
		},
		{
			name:    "end paused",
			prepare: func(m *Manager, id string) { _ = m.Pause(id) },
			op:      (*Manager).End,
		},
		{
			name:    "archive completed",
			prepare: func(m *Manager, id string) { _ = m.End(id) },
			op:      (*Manager).Archive,
		},
		{
			name:    "pause paused fails",
			prepare: func(m *Manager, id string) { _ = m.Pause(id) },
			op:      (*Manager).Pause,
			wantErr: true,
		},
		{
			name:    "resume active fails",
			prepare: func(m *Manager, id string) {},
			op:      (*Manager).Resume,
			wantErr: true,
		},
		{
			name:    "end completed fails",
			prepare: func(m *Manager, id string) { _ = m.End(id) },
			op:      (*Manager).End,
			wantErr: true,
		},
		{
			name:    "archive active fails",
			prepare: func(m *Manager, id string) {},
			op:      (*Manager).Archive,
			wantErr: true,
		},
		{
			name:    "archive archived fails",
			prepare: func(m *Manager, id string) { _ = m.End(id); _ = m.Archive(id) },
			op:      (*Manager).Archive,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			sess, err := m.CreateSession("s", "https://example.com")
			require.NoError(t, err)
			tt.prepare(m, sess.ID)

			err = tt.op(m, sess.ID)
			if tt.wantErr {
				var invalid *types.InvalidOperationError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEndRecordsTimestamp(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")
	require.NoError(t, m.End(sess.ID))

	ended, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, ended.Status)
	require.NotNil(t, ended.EndedAt)
	assert.WithinDuration(t, time.Now(), *ended.EndedAt, time.Minute)
}

func TestTransitionOnUnknownSession(t *testing.T) {
	m := NewManager()
	var notFound *types.SessionNotFoundError
	assert.ErrorAs(t, m.End("ghost"), &notFound)
	assert.ErrorAs(t, m.Pause("ghost"), &notFound)
	assert.ErrorAs(t, m.Resume("ghost"), &notFound)
	assert.ErrorAs(t, m.Archive("ghost"), &notFound)
	assert.ErrorAs(t, m.Delete("ghost"), &notFound)
}

func TestGetAllAndGetActive(t *testing.T) {
	m := NewManager()
	first, _ := m.CreateSession("first", "")
	second, _ := m.CreateSession("second", "")
	require.NoError(t, m.End(second.ID))

	all := m.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Name)
	assert.Equal(t, "second", all[1].Name)

	active := m.GetActive()
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

func TestDeleteCascades(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")
	require.NoError(t, m.AddSnapshot(sess.ID, &types.Snapshot{CapturedAt: time.Now()}))

	require.NoError(t, m.Delete(sess.ID))
	_, err := m.Get(sess.ID)
	var notFound *types.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, m.GetAll())
}

func TestAddSnapshotUpdatesStatistics(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")

	snapshot := &types.Snapshot{
		CapturedAt: time.Now(),
		ConsoleMessages: []types.ConsoleMessage{
			{ID: "c1", Level: types.LogError},
			{ID: "c2", Level: types.LogError},
			{ID: "c3", Level: types.LogWarning},
		},
		NetworkRequests: []types.NetworkRequest{
			{ID: "n1", StatusCode: 500, Duration: 100 * time.Millisecond},
			{ID: "n2", StatusCode: 200, Duration: 300 * time.Millisecond},
		},
		PerformanceSamples: []types.PerformanceSample{
			{ID: "p1", CPUPercent: 75, MemoryBytes: 1024},
		},
	}
	require.NoError(t, m.AddSnapshot(sess.ID, snapshot))

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	stats := got.Statistics
	assert.Equal(t, 3, stats.TotalConsoleMessages)
	assert.Equal(t, 2, stats.ConsoleErrors)
	assert.Equal(t, 1, stats.ConsoleWarnings)
	assert.Equal(t, 2, stats.TotalNetworkRequests)
	assert.Equal(t, 1, stats.FailedNetworkRequests)
	assert.Equal(t, 0.5, stats.FailureRate)
	assert.Equal(t, 200*time.Millisecond, stats.MeanResponseTime)
	assert.Equal(t, 75.0, stats.PeakCPUPercent)
	assert.Equal(t, 1, stats.SnapshotCount)
	assert.Equal(t, sess.ID, snapshot.SessionID)
	assert.NotEmpty(t, snapshot.ID)
}

func TestOverlappingSnapshotsCountRecordsOnce(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")

	shared := types.ConsoleMessage{ID: "c1", Level: types.LogError}
	require.NoError(t, m.AddSnapshot(sess.ID, &types.Snapshot{
		ConsoleMessages: []types.ConsoleMessage{shared},
	}))
	require.NoError(t, m.AddSnapshot(sess.ID, &types.Snapshot{
		ConsoleMessages: []types.ConsoleMessage{shared, {ID: "c2", Level: types.LogError}},
	}))

	got, _ := m.Get(sess.ID)
	assert.Equal(t, 2, got.Statistics.TotalConsoleMessages)
	assert.Equal(t, 2, got.Statistics.ConsoleErrors)
	assert.Equal(t, 2, got.Statistics.SnapshotCount)
}

func TestAddAnalysisResultAccumulatesTokens(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")

	require.NoError(t, m.AddAnalysisResult(sess.ID, &types.AnalysisResult{TokensUsed: 300}))
	require.NoError(t, m.AddAnalysisResult(sess.ID, &types.AnalysisResult{TokensUsed: 200}))

	got, _ := m.Get(sess.ID)
	assert.Equal(t, 2, got.Statistics.AnalysisCount)
	assert.Equal(t, 500, got.Statistics.TotalTokensUsed)
}

func TestAddChildrenValidation(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")

	var validation *types.ValidationError
	assert.ErrorAs(t, m.AddSnapshot(sess.ID, nil), &validation)
	assert.ErrorAs(t, m.AddAnalysisResult(sess.ID, nil), &validation)

	var notFound *types.SessionNotFoundError
	assert.ErrorAs(t, m.AddSnapshot("ghost", &types.Snapshot{}), &notFound)
}

func TestTags(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")

	require.NoError(t, m.SetTag(sess.ID, "env", "staging"))
	require.NoError(t, m.SetTag(sess.ID, "env", "production")) // overwrite

	got, _ := m.Get(sess.ID)
	assert.Equal(t, "production", got.Tags["env"])

	require.NoError(t, m.DeleteTag(sess.ID, "env"))
	require.NoError(t, m.DeleteTag(sess.ID, "absent")) // no-op

	got, _ = m.Get(sess.ID)
	assert.Empty(t, got.Tags)

	var validation *types.ValidationError
	assert.ErrorAs(t, m.SetTag(sess.ID, "  ", "v"), &validation)
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("s", "")
	require.NoError(t, m.AddSnapshot(sess.ID, &types.Snapshot{}))

	got, _ := m.Get(sess.ID)
	got.Name = "mutated"
	got.Snapshots = nil
	got.Tags["rogue"] = "x"

	fresh, _ := m.Get(sess.ID)
	assert.Equal(t, "s", fresh.Name)
	assert.Len(t, fresh.Snapshots, 1)
	assert.NotContains(t, fresh.Tags, "rogue")
}

func TestImportAssignsFreshIdentity(t *testing.T) {
	m := NewManager()

	external := &types.DebugSession{
		ID:     "external-id",
		Name:   "imported run",
		Status: types.SessionActive,
		Snapshots: []*types.Snapshot{
			{ID: "snap-1", SessionID: "external-id"},
		},
		AnalysisResults: []*types.AnalysisResult{
			{ID: "a-1", SessionID: "external-id", TokensUsed: 42},
		},
	}

	imported, err := m.Import(external)
	require.NoError(t, err)
	assert.NotEqual(t, "external-id", imported.ID)
	assert.Equal(t, types.SessionCompleted, imported.Status)
	assert.Equal(t, imported.ID, imported.Snapshots[0].SessionID)
	assert.Equal(t, imported.ID, imported.AnalysisResults[0].SessionID)
	assert.Equal(t, 42, imported.Statistics.TotalTokensUsed)

	var validation *types.ValidationError
	_, err = m.Import(&types.DebugSession{Name: ""})
	assert.ErrorAs(t, err, &validation)
	_, err = m.Import(nil)
	assert.ErrorAs(t, err, &validation)
}

func TestExportJSONRoundTripsThroughImport(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("round trip", "https://example.com")
	require.NoError(t, m.AddSnapshot(sess.ID, &types.Snapshot{
		ConsoleMessages: []types.ConsoleMessage{{ID: "c1", Level: types.LogError, Text: "boom"}},
	}))
	require.NoError(t, m.End(sess.ID))

	data, err := m.Export(sess.ID, FormatJSON)
	require.NoError(t, err)

	var decoded types.DebugSession
	require.NoError(t, json.Unmarshal(data, &decoded))

	imported, err := m.Import(&decoded)
	require.NoError(t, err)
	assert.Equal(t, "round trip", imported.Name)
	assert.Equal(t, 1, imported.Statistics.TotalConsoleMessages)
}

func TestExportTextAndMarkdown(t *testing.T) {
	m := NewManager()
	sess, _ := m.CreateSession("render check", "https://example.com")
	require.NoError(t, m.AddAnalysisResult(sess.ID, &types.AnalysisResult{
		Model:      "demo-model",
		Status:     types.AnalysisCompleted,
		Summary:    "All quiet.",
		AnalyzedAt: time.Now(),
	}))

	text, err := m.Export(sess.ID, FormatText)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Debug Session Report: render check")
	assert.Contains(t, string(text), "demo-model")
	assert.Contains(t, string(text), "All quiet.")

	md, err := m.Export(sess.ID, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Debug Session: render check")
	assert.Contains(t, string(md), "## Statistics")

	_, err = m.Export(sess.ID, ExportFormat("xml"))
	var validation *types.ValidationError
	assert.ErrorAs(t, err, &validation)
}
