package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"dashviz/domain/core"
	domainDataset "dashviz/domain/dataset"
	"dashviz/internal"
	"dashviz/internal/dataset"
)

// Manager keeps dashboard sessions in memory. Sessions do not survive a
// restart.
type Manager struct {
	mu       sync.RWMutex
	sessions map[core.ID]*Session
	loader   *dataset.Loader
	columns  int
	logger   *internal.Logger
}

// NewManager creates a manager that loads uploads with loader and lays out
// new dashboards with the given number of columns.
func NewManager(loader *dataset.Loader, columns int) *Manager {
	if loader == nil {
		loader = dataset.NewDefaultLoader()
	}
	return &Manager{
		sessions: make(map[core.ID]*Session),
		loader:   loader,
		columns:  columns,
		logger:   internal.DefaultLogger,
	}
}

// Create loads an uploaded file and opens a session over it. On failure
// the returned record describes the rejected upload.
func (m *Manager) Create(name string, data []byte) (*Session, *domainDataset.Dataset, error) {
	table, record, err := m.loader.LoadDataset(name, data)
	if err != nil {
		m.logger.Warn("[SessionManager] rejected upload %s: %v", name, err)
		return nil, record, err
	}
	s := m.Open(table, record)
	return s, record, nil
}

// Open registers a session over an already loaded table.
func (m *Manager) Open(table *domainDataset.Table, record *domainDataset.Dataset) *Session {
	s := New(table, record, m.columns)

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("[SessionManager] opened session %s (%d rows, %d columns, %d active)",
		s.ID, table.Len(), table.Width(), count)
	return s
}

// Get returns a session and marks it as used.
func (m *Manager) Get(id core.ID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	s.touch()
	return s, nil
}

// Delete closes a session.
func (m *Manager) Delete(id core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// List returns the open sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired closes sessions unused for longer than maxIdle and returns
// how many were closed.
func (m *Manager) CleanupExpired(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastAccess().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("[SessionManager] closed %d idle sessions, %d active", removed, len(m.sessions))
	}
	return removed
}
