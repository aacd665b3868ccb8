package gateway

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownSession is returned for a session ID the store never issued.
var ErrUnknownSession = errors.New("gateway: unknown session")

// Session is the per-caller state kept by the gateway.
type Session struct {
	ID        string
	Ready     bool
	Indicator bool
}

// SessionStore holds session state keyed by session ID.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Open registers a new session and returns its ID.
func (s *SessionStore) Open() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &Session{ID: id}
	s.mu.Unlock()
	return id
}

// Close forgets a session.
func (s *SessionStore) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Get returns a copy of the session state.
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// MarkReady flags the session as ready.
func (s *SessionStore) MarkReady(id string) (Session, error) {
	return s.update(id, func(sess *Session) { sess.Ready = true })
}

// SetIndicator sets the session's indicator.
func (s *SessionStore) SetIndicator(id string, active bool) (Session, error) {
	return s.update(id, func(sess *Session) { sess.Indicator = active })
}

func (s *SessionStore) update(id string, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrUnknownSession
	}
	fn(sess)
	return *sess, nil
}
