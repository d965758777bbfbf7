// store.go holds the in-memory session registry.
//
// Sessions are deliberately not persisted — a takeoff session lives for the
// duration of the work and is gone when it expires. The store evicts sessions
// that have been idle past the TTL so abandoned uploads don't accumulate
// plan bytes in memory.
package takeoff

import (
	"log"
	"sync"
	"time"
)

// Store is a thread-safe in-memory map of live sessions with TTL expiry.
type Store struct {
	// Go Pattern: sync.RWMutex allows multiple concurrent readers but
	// exclusive writers — session lookups vastly outnumber creates/deletes.
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{}
}

// NewStore creates a session store and starts its background janitor.
func NewStore(ttl time.Duration) *Store {
	st := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go st.janitor()
	return st
}

// Create registers a new session.
func (st *Store) Create(name, unit string) *Session {
	s := NewSession(name, unit)
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given ID and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Delete removes a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Snapshots returns a copy of every live session, for the admin surface.
func (st *Store) Snapshots() []Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]Snapshot, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Shutdown stops the background janitor.
func (st *Store) Shutdown() {
	close(st.done)
}

// janitor periodically evicts sessions idle past the TTL.
func (st *Store) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-st.done:
			return
		case <-ticker.C:
			st.evictExpired()
		}
	}
}

func (st *Store) evictExpired() {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen()) > st.ttl {
			delete(st.sessions, id)
			log.Printf("🧹 Session %s expired after %s idle", id, st.ttl)
		}
	}
}
