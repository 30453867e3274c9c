package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one wizard session. The selection inside is owned exclusively
// by the session; a completed confirmation discards the whole session
// rather than mutating it in place.
type Session struct {
	ID        string
	ClientID  string
	Selection Selection
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

// With runs fn while holding the session lock and stamps UpdatedAt.
func (s *Session) With(fn func(sel *Selection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.Selection)
	s.UpdatedAt = time.Now()
}

// Snapshot returns a copy of the current selection.
func (s *Session) Snapshot() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Selection
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// Store manages wizard sessions in memory.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewStore creates a session store.
func NewStore(timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Create starts a new empty session for the client.
func (st *Store) Create(clientID string) *Session {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		StartedAt: now,
		UpdatedAt: now,
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID] = session
	return session
}

// Get returns a live session, or nil when unknown or expired.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	if !ok || session.IsExpired(st.timeout) {
		return nil
	}
	return session
}

// Delete removes a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Cleanup removes expired sessions and reports how many were dropped.
func (st *Store) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, session := range st.sessions {
		if session.IsExpired(st.timeout) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
