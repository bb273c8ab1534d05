package web

import (
	"sync"
	"time"

	"screening-bot/internal/intake"
)

type entry struct {
	mu       sync.Mutex
	session  intake.Session
	lastSeen time.Time

	// removed is set under mu once sweep has handed the session off.
	removed bool
}

// sessionStore holds one Session per browser, expiring idle ones after ttl.
// Each entry has its own lock so a session only processes one turn at a time.
type sessionStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     now,
	}
}

func (s *sessionStore) put(sess intake.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID] = &entry{session: sess, lastSeen: s.now()}
}

// with runs fn on the session under its lock and stores the returned value.
// It reports false when the session is unknown or was expired meanwhile.
func (s *sessionStore) with(id string, fn func(intake.Session) intake.Session) bool {
	e, ok := s.lookup(id)
	if !ok {
		return false
	}
	return s.apply(e, fn)
}

func (s *sessionStore) lookup(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *sessionStore) apply(e *entry, fn func(intake.Session) intake.Session) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false
	}
	e.session = fn(e.session)
	e.lastSeen = s.now()
	return true
}

func (s *sessionStore) get(id string) (intake.Session, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return intake.Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return intake.Session{}, false
	}
	return e.session.Clone(), true
}

// sweep removes sessions idle for longer than ttl and returns them.
func (s *sessionStore) sweep() []intake.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	var expired []intake.Session
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastSeen.Before(cutoff) {
			e.removed = true
			expired = append(expired, e.session)
			delete(s.entries, id)
		}
		e.mu.Unlock()
	}
	return expired
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
