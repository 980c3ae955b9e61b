package store

import (
	"sync"
	"time"

	"github.com/randalmurphal/orcdash/pkg/events"
)

// SessionStore holds aggregate orchestrator-session metrics. Between
// metrics events the dashboard ticks a local elapsed-time clock; the
// server's duration_seconds is authoritative and rebases that clock on
// every merge, so a drifted local timer snaps back instead of fighting
// the server.
type SessionStore struct {
	mu sync.Mutex

	metrics events.SessionMetrics
	// baseAt is when metrics.DurationSeconds was last authoritative.
	baseAt time.Time

	now func() time.Time // test hook
}

// NewSessionStore creates a session store with a zeroed clock.
func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

// Merge adopts a server metrics snapshot wholesale and rebases the
// local duration clock on it.
func (s *SessionStore) Merge(m events.SessionMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
	s.baseAt = s.now()
}

// Metrics returns the last merged snapshot.
func (s *SessionStore) Metrics() events.SessionMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Elapsed returns the session duration, extrapolated locally from the
// last authoritative server value. The clock only advances while tasks
// are running and the session is not paused — matching how the server
// accounts duration.
func (s *SessionStore) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := time.Duration(s.metrics.DurationSeconds) * time.Second
	if s.baseAt.IsZero() || s.metrics.IsPaused || s.metrics.TasksRunning == 0 {
		return d
	}
	return d + s.now().Sub(s.baseAt)
}
