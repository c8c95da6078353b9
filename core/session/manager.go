package session

import (
	"log/slog"
	"sync"
	"time"
)

// Manager holds the sessions of all connected clients.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	resolver Resolver
	logger   *slog.Logger
}

// NewManager creates a Manager whose sessions resolve files with resolver.
func NewManager(resolver Resolver, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		resolver: resolver,
		logger:   logger,
	}
}

// Create starts a new idle session.
func (m *Manager) Create() *Session {
	s := New(m.resolver, m.logger)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupIdle removes sessions unused for longer than maxIdle and returns how
// many were removed.
func (m *Manager) CleanupIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.logger.Info("cleaned up idle sessions", "count", len(expired))
	}
	return len(expired)
}
