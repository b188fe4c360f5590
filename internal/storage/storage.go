package storage

import (
	"sync"

	"github.com/shelfscan/shelfscan/internal/models"
)

// SessionStore keeps detection sessions in memory for the lifetime of the
// server. Nothing is persisted across restarts.
type SessionStore struct {
	sessions map[string]*models.DetectionSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.DetectionSession),
	}
}

func (s *SessionStore) Get(sessionID string) (*models.DetectionSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *SessionStore) Set(sessionID string, session *models.DetectionSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) GetAll() map[string]*models.DetectionSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.DetectionSession, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
