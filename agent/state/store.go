package state

import (
	"sync"
	"time"
)

// Store is the process-wide table of active call sessions, keyed by caller
// identifier. Each key carries its own mutex: Update holds it for the whole
// read-modify-write of one call event, so concurrent events for the same
// caller (a spoken utterance racing a silence timeout) are processed strictly
// in order instead of interleaving.
//
// Sessions live only as long as the call; nothing here survives a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu   sync.Mutex
	sess *CallSession
	// gone marks an entry removed while another event was waiting on mu.
	gone bool
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*sessionEntry)}
}

// Update runs fn against the caller's session under the per-caller lock,
// creating the session if absent. If fn leaves the session in PhaseEnded the
// session is removed from the table before the lock is released, so removal
// is atomic with the terminal transition.
func (st *Store) Update(callerID string, now time.Time, fn func(*CallSession) error) error {
	for {
		st.mu.Lock()
		e, ok := st.sessions[callerID]
		if !ok {
			e = &sessionEntry{sess: NewCallSession(callerID, now)}
			st.sessions[callerID] = e
		}
		st.mu.Unlock()

		e.mu.Lock()
		if e.gone {
			// Removed between map lookup and lock acquisition; retry with a
			// fresh entry.
			e.mu.Unlock()
			continue
		}

		err := fn(e.sess)
		e.sess.Touch(now)

		if e.sess.Phase == PhaseEnded {
			st.mu.Lock()
			delete(st.sessions, callerID)
			st.mu.Unlock()
			e.gone = true
		}
		e.mu.Unlock()
		return err
	}
}

// Drop removes the caller's session unconditionally (explicit hangup).
func (st *Store) Drop(callerID string) {
	st.mu.Lock()
	e, ok := st.sessions[callerID]
	if ok {
		delete(st.sessions, callerID)
	}
	st.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.gone = true
		e.mu.Unlock()
	}
}

// Contains reports whether a session exists for the caller.
func (st *Store) Contains(callerID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[callerID]
	return ok
}

// Snapshot returns a shallow copy of the caller's session for inspection.
func (st *Store) Snapshot(callerID string) (CallSession, bool) {
	st.mu.Lock()
	e, ok := st.sessions[callerID]
	st.mu.Unlock()
	if !ok {
		return CallSession{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return CallSession{}, false
	}
	return *e.sess, true
}

// Len reports the number of active sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
