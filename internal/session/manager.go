// Package session keeps the routers of running clients, one per launch.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medihelp-server/internal/router"
)

// ErrNotFound is returned for unknown or ended sessions.
var ErrNotFound = errors.New("session not found")

// Manager creates and tracks live sessions. Sessions live in memory only.
type Manager struct {
	dir     router.Directory
	calls   router.CallNotifier
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*router.Router
}

// NewManager creates a Manager whose routers use dir and calls.
func NewManager(dir router.Directory, calls router.CallNotifier, lookupTimeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		dir:      dir,
		calls:    calls,
		timeout:  lookupTimeout,
		logger:   logger,
		sessions: make(map[string]*router.Router),
	}
}

// Launch starts a session, the equivalent of a process start. launchChannel
// is the deep link carried by a tapped call notification, empty otherwise.
func (m *Manager) Launch(launchChannel string) (string, *router.Router) {
	id := uuid.New().String()
	r := router.New(launchChannel, m.dir, m.calls, m.timeout, m.logger.With(zap.String("session_id", id)))

	m.mu.Lock()
	m.sessions[id] = r
	m.mu.Unlock()

	m.logger.Info("Session launched", zap.String("session_id", id), zap.Bool("deep_link", launchChannel != ""))
	return id, r
}

// Get returns the router of a live session.
func (m *Manager) Get(id string) (*router.Router, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// End stops and forgets a session.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	r, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	r.Close()
	m.logger.Info("Session ended", zap.String("session_id", id))
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown ends every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*router.Router)
	m.mu.Unlock()

	for _, r := range sessions {
		r.Close()
	}
}
