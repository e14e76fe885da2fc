package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/research-assistant/pkg/grounding"
	"github.com/mikeboe/research-assistant/pkg/research"
)

// Session is the in-memory state of one browser.
type Session struct {
	ID           uuid.UUID
	Orchestrator *research.Orchestrator
	Log          *SessionLog
	Logger       *slog.Logger

	lastSeen time.Time
}

// SessionStore keeps one Orchestrator per browser session. Sessions idle for
// longer than the TTL are dropped; nothing is persisted.
type SessionStore struct {
	searcher grounding.Searcher
	ttl      time.Duration
	logLimit int
	base     slog.Handler
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore(searcher grounding.Searcher, ttl time.Duration, logLimit int) *SessionStore {
	return &SessionStore{
		searcher: searcher,
		ttl:      ttl,
		logLimit: logLimit,
		base:     slog.Default().Handler(),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Get returns the session for id, creating a fresh one when id is unknown or
// expired. The second result is false when a new session was created.
func (s *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	if sess, ok := s.sessions[id]; ok && id != uuid.Nil {
		sess.lastSeen = now
		return sess, true
	}

	sess := s.newSessionLocked(now)
	return sess, false
}

// Lookup returns an existing session without creating one.
func (s *SessionStore) Lookup(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.now())
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) newSessionLocked(now time.Time) *Session {
	id := uuid.New()
	log := NewSessionLog(s.logLimit)
	logger := slog.New(NewSessionLogHandler(log, id, s.base))

	orch := research.NewOrchestrator(s.searcher)
	orch.Logger = logger

	sess := &Session{
		ID:           id,
		Orchestrator: orch,
		Log:          log,
		Logger:       logger,
		lastSeen:     now,
	}
	s.sessions[id] = sess
	logger.Info("Session started")
	return sess
}

func (s *SessionStore) evictLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			sess.Orchestrator.Clear()
			delete(s.sessions, id)
		}
	}
}
