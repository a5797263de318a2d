package httpapi

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

//SessionKeyLength is the length of generated session keys
const SessionKeyLength = 128

//SessionStore is an interface to an arbitrary session backend.
type SessionStore interface {
	//Create returns a new sessionID for the given User. If the backend malfunctions,
	//sessionID will be an empty string and err will be non-nil.
	Create(userID, email string) (sessionID string, err error)

	//Check returns whether or not sessionID is a valid session.
	//If sessionID is not valid, session will be nil.
	//If the backend malfunctions, session will be nil and err will be non-nil.
	Check(sessionID string) (session *Session, err error)
}

//Session represents a login session
type Session struct {
	UserID  string
	Email   string
	Expires time.Time
}

//MemorySessionStore represents a SessionStore that uses an in-memory map
type MemorySessionStore struct {
	store    map[string]*Session
	duration time.Duration
	mu       *sync.Mutex
	logger   *zap.Logger
	now      func() time.Time
}

//scavenge removes stale records every hour
func scavenge(m *MemorySessionStore) {
	for {
		time.Sleep(time.Hour)
		m.removeExpired()
	}
}

func (m *MemorySessionStore) removeExpired() {
	now := m.now()
	m.mu.Lock()
	for id, t := range m.store {
		if t.Expires.Before(now) {
			delete(m.store, id)
		}
	}
	m.mu.Unlock()
}

//NewMemorySessionStore returns a new MemorySessionStore with the given expiration duration.
//A nil logger discards logs.
func NewMemorySessionStore(duration time.Duration, logger *zap.Logger) *MemorySessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &MemorySessionStore{
		store:    make(map[string]*Session),
		duration: duration,
		mu:       new(sync.Mutex),
		logger:   logger,
		now:      time.Now,
	}
	go scavenge(m)
	return m
}

//Create returns a new sessionID for the given User. err will always be nil.
func (m *MemorySessionStore) Create(userID, email string) (sessionID string, err error) {
	id := randString(SessionKeyLength, m.logger)
	m.mu.Lock()
	m.store[id] = &Session{
		UserID:  userID,
		Email:   email,
		Expires: m.now().Add(m.duration),
	}
	m.mu.Unlock()
	return id, nil
}

//Check returns whether or not sessionID is a valid session. If sessionID is not valid, session will be nil.
//A valid session's expiration is extended. err will always be nil.
func (m *MemorySessionStore) Check(sessionID string) (session *Session, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.store[sessionID]; ok {
		now := m.now()
		if s.Expires.After(now) {
			s.Expires = now.Add(m.duration)
			sess := *s
			return &sess, nil
		}
		delete(m.store, sessionID)
	}
	return nil, nil
}
