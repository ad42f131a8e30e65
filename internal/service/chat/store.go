package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("session not found")

// Store is the process-wide session store. Sessions are created on first
// interaction and torn down when discarded or idle for too long.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTimeout   time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

// NewStore bootstraps an in-memory store. A zero idleTimeout disables eviction.
func NewStore(idleTimeout, sweepInterval time.Duration) *Store {
	return &Store{
		sessions:      make(map[string]*Session),
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Acquire returns the session for id, creating it when id is empty or
// unknown, and locks it for one interaction. The caller must call release.
func (s *Store) Acquire(id string) (*Session, func()) {
	session := s.getOrCreate(id)
	session.mu.Lock()
	// The session may have been evicted or discarded while we waited.
	for !s.holds(session) {
		session.mu.Unlock()
		session = s.getOrCreate(session.ID)
		session.mu.Lock()
	}
	session.lastActive = s.now()

	return session, func() {
		session.lastActive = s.now()
		session.mu.Unlock()
	}
}

func (s *Store) getOrCreate(id string) *Session {
	if id != "" {
		s.mu.RLock()
		session, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return session
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok && id != "" {
		return session
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	session := NewSession(id)
	s.sessions[id] = session
	log.Debug().Str("component", "session").Str("session_id", id).Msg("session created")
	return session
}

func (s *Store) holds(session *Session) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[session.ID] == session
}

// Get retrieves a session by identifier without creating it.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Discard tears a session down. The next interaction with the same id
// starts from scratch.
func (s *Store) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	log.Debug().Str("component", "session").Str("session_id", id).Msg("session discarded")
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartEvictionLoop discards idle sessions until ctx is done.
func (s *Store) StartEvictionLoop(ctx context.Context) {
	if s.idleTimeout <= 0 || s.sweepInterval <= 0 {
		return
	}
	go s.runEvictionLoop(ctx)
}

func (s *Store) runEvictionLoop(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(s.now()); n > 0 {
				log.Info().Str("component", "session").Int("evicted", n).Msg("evicted idle sessions")
			}
		}
	}
}

// evictIdle drops sessions idle for longer than the timeout. Sessions in
// the middle of an interaction are skipped.
func (s *Store) evictIdle(now time.Time) int {
	if s.idleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		if !session.mu.TryLock() {
			continue
		}
		idle := now.Sub(session.lastActive) > s.idleTimeout
		session.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
