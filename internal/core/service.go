package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/tabview/internal/table"
	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 30 * time.Minute

// ServiceConfig configures a Service. Zero fields take their defaults.
type ServiceConfig struct {
	FilterMode    table.FilterMode
	Grammar       table.Grammar
	SortDelay     time.Duration
	IdleTimeout   time.Duration
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service owns every live session and the shared decoding limiter.
type Service struct {
	opts        SessionOptions
	grammar     table.Grammar
	idleTimeout time.Duration
	limiter     *DecodeLimiter

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig) *Service {
	if cfg.FilterMode == "" {
		cfg.FilterMode = table.ModeCompose
	}
	if cfg.Grammar == "" {
		cfg.Grammar = table.GrammarQuoted
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Service{
		opts:        SessionOptions{FilterMode: cfg.FilterMode, SortDelay: cfg.SortDelay},
		grammar:     cfg.Grammar,
		idleTimeout: cfg.IdleTimeout,
		limiter:     NewDecodeLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		sessions:    make(map[string]*Session),
	}
}

// Limiter returns the decoding limiter shared by all sessions.
func (s *Service) Limiter() *DecodeLimiter {
	return s.limiter
}

// Create starts a new empty session.
func (s *Service) Create() *Session {
	sess := NewSession(uuid.New().String(), s.opts)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Debug("session created", "session_id", sess.ID)
	return sess
}

// Get returns the session with id and marks it as used.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok {
		sess.touch(time.Now())
	}
	return sess, ok
}

// GetOrCreate returns the session with id, or a new session when id is
// unknown. created reports which happened.
func (s *Service) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Drop closes and forgets the session with id.
func (s *Service) Drop(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.Close()
	}
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops every session idle for longer than the idle timeout at now
// and returns how many were dropped.
func (s *Service) Sweep(now time.Time) int {
	var stale []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.idleTimeout {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	return len(stale)
}

// Shutdown closes every session.
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
