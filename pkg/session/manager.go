// Package session owns the debug-session system of record: lifecycle state,
// attached snapshots and analysis results, and session export/import. All
// mutation goes through the Manager, which serializes access to the session
// table so create/end/delete stay atomic relative to concurrent child appends.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/probelabs/webscope/pkg/types"
)

// Manager is the process-wide session table. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*types.DebugSession
	order    []string // creation order, for stable listings
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*types.DebugSession),
	}
}

// CreateSession starts a new active session against the target URL.
// Fails with a ValidationError when name is empty.
func (m *Manager) CreateSession(name, targetURL string) (*types.DebugSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.NewValidationError("name", "session name must not be empty")
	}

	session := &types.DebugSession{
		ID:              uuid.New().String(),
		Name:            name,
		TargetURL:       targetURL,
		Status:          types.SessionActive,
		CreatedAt:       time.Now(),
		Snapshots:       []*types.Snapshot{},
		AnalysisResults: []*types.AnalysisResult{},
		Tags:            map[string]string{},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	m.order = append(m.order, session.ID)
	return cloneSession(session), nil
}

// Get returns a copy of the session. The copy shares its immutable children
// with the stored session but detaches the containers, so callers cannot
// bypass the manager's serialization.
func (m *Manager) Get(id string) (*types.DebugSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, types.NewSessionNotFoundError(id)
	}
	return cloneSession(session), nil
}

// GetAll returns copies of every session in creation order.
func (m *Manager) GetAll() []*types.DebugSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.DebugSession, 0, len(m.order))
	for _, id := range m.order {
		if session, ok := m.sessions[id]; ok {
			out = append(out, cloneSession(session))
		}
	}
	return out
}

// GetActive returns copies of sessions currently in the active status.
func (m *Manager) GetActive() []*types.DebugSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.DebugSession
	for _, id := range m.order {
		if session, ok := m.sessions[id]; ok && session.Status == types.SessionActive {
			out = append(out, cloneSession(session))
		}
	}
	return out
}

// End completes an active or paused session.
func (m *Manager) End(id string) error {
	return m.transition(id, "end", func(s *types.DebugSession) bool {
		if s.Status != types.SessionActive && s.Status != types.SessionPaused {
			return false
		}
		now := time.Now()
		s.Status = types.SessionCompleted
		s.EndedAt = &now
		return true
	})
}

// Pause suspends an active session.
func (m *Manager) Pause(id string) error {
	return m.transition(id, "pause", func(s *types.DebugSession) bool {
		if s.Status != types.SessionActive {
			return false
		}
		s.Status = types.SessionPaused
		return true
	})
}

// Resume reactivates a paused session.
func (m *Manager) Resume(id string) error {
	return m.transition(id, "resume", func(s *types.DebugSession) bool {
		if s.Status != types.SessionPaused {
			return false
		}
		s.Status = types.SessionActive
		return true
	})
}

// Archive moves a completed session to its terminal state.
func (m *Manager) Archive(id string) error {
	return m.transition(id, "archive", func(s *types.DebugSession) bool {
		if s.Status != types.SessionCompleted {
			return false
		}
		s.Status = types.SessionArchived
		return true
	})
}

// Delete removes the session and cascades its children. Any status may be
// deleted.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return types.NewSessionNotFoundError(id)
	}
	delete(m.sessions, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// transition applies a status change under the table lock. apply returns
// false when the session's current status does not permit the operation.
func (m *Manager) transition(id, operation string, apply func(*types.DebugSession) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return types.NewSessionNotFoundError(id)
	}
	if !apply(session) {
		return types.NewInvalidOperationError(operation, session.Status)
	}
	return nil
}

// AddSnapshot attaches a snapshot to the session and updates its running
// statistics. The snapshot is re-parented to the session id.
func (m *Manager) AddSnapshot(sessionID string, snapshot *types.Snapshot) error {
	if snapshot == nil {
		return types.NewValidationError("snapshot", "snapshot must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return types.NewSessionNotFoundError(sessionID)
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	snapshot.SessionID = sessionID
	session.Snapshots = append(session.Snapshots, snapshot)
	session.Statistics = computeStatistics(session)
	return nil
}

// AddAnalysisResult attaches an analysis result to the session and updates
// its running statistics. Results are append-only once attached.
func (m *Manager) AddAnalysisResult(sessionID string, result *types.AnalysisResult) error {
	if result == nil {
		return types.NewValidationError("analysis_result", "analysis result must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return types.NewSessionNotFoundError(sessionID)
	}
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	result.SessionID = sessionID
	session.AnalysisResults = append(session.AnalysisResults, result)
	session.Statistics = computeStatistics(session)
	return nil
}

// SetTag sets a key/value tag on the session.
func (m *Manager) SetTag(sessionID, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return types.NewValidationError("key", "tag key must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return types.NewSessionNotFoundError(sessionID)
	}
	if session.Tags == nil {
		session.Tags = map[string]string{}
	}
	session.Tags[key] = value
	return nil
}

// DeleteTag removes a tag from the session. Removing an absent key is a no-op.
func (m *Manager) DeleteTag(sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return types.NewSessionNotFoundError(sessionID)
	}
	delete(session.Tags, key)
	return nil
}

// Import registers an externally sourced session under a fresh identity so it
// can never collide with a live session. Children are re-parented to the new
// id and the session is marked non-active.
func (m *Manager) Import(session *types.DebugSession) (*types.DebugSession, error) {
	if session == nil {
		return nil, types.NewValidationError("session", "session must not be nil")
	}
	if strings.TrimSpace(session.Name) == "" {
		return nil, types.NewValidationError("name", "session name must not be empty")
	}

	imported := cloneSession(session)
	imported.ID = uuid.New().String()
	if imported.Status == types.SessionActive || imported.Status == types.SessionPaused {
		imported.Status = types.SessionCompleted
	}
	for _, snapshot := range imported.Snapshots {
		snapshot.SessionID = imported.ID
	}
	for _, result := range imported.AnalysisResults {
		result.SessionID = imported.ID
	}
	imported.Statistics = computeStatistics(imported)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[imported.ID] = imported
	m.order = append(m.order, imported.ID)
	return cloneSession(imported), nil
}

// cloneSession copies the session struct and its containers. Snapshots and
// analysis results are immutable once attached, so the clone shares them.
func cloneSession(s *types.DebugSession) *types.DebugSession {
	clone := *s
	clone.Snapshots = make([]*types.Snapshot, len(s.Snapshots))
	copy(clone.Snapshots, s.Snapshots)
	clone.AnalysisResults = make([]*types.AnalysisResult, len(s.AnalysisResults))
	copy(clone.AnalysisResults, s.AnalysisResults)
	if s.Tags != nil {
		clone.Tags = make(map[string]string, len(s.Tags))
		for k, v := range s.Tags {
			clone.Tags[k] = v
		}
	}
	return &clone
}
