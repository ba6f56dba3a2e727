package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions in memory only. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	deps     Deps
}

func NewStore(deps Deps) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		deps:     deps,
	}
}

func (s *Store) Create() *Session {
	sess := New(uuid.New(), s.deps)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.deps.Metrics.SessionOpened()
	s.deps.Logger.Info().Str("session_id", sess.ID.String()).Msg("session opened")
	return sess
}

func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.deps.Metrics.SessionClosed()
		s.deps.Logger.Info().Str("session_id", id.String()).Msg("session closed")
	}
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
