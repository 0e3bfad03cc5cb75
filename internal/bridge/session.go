package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/san-kum/pathreplay/internal/metrics"
	"github.com/san-kum/pathreplay/internal/provider"
	"github.com/san-kum/pathreplay/internal/replay"
)

const writeWait = 10 * time.Second

var errSessionClosed = errors.New("bridge: session closed")

// Session is one browser connection and the replay it drives.
type Session struct {
	ID     uuid.UUID
	engine *replay.Engine
	loader *provider.Loader

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu            sync.Mutex
	algorithm     provider.Algorithm
	obstacleCount int
	lastActive    time.Time
	closed        bool

	ctx    context.Context
	cancel context.CancelFunc
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return errSessionClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

func (s *Session) Algorithm() provider.Algorithm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.algorithm
}

func (s *Session) setAlgorithm(a provider.Algorithm) {
	s.mu.Lock()
	s.algorithm = a
	s.mu.Unlock()
}

// close stops any play and closes the connection. Safe to call twice.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.engine.Stop()
	s.writeMu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.writeMu.Unlock()
}

// SessionManager tracks open sessions and closes those idle for longer than
// the TTL.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewSessionManager(ttl time.Duration, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *SessionManager) add(s *Session) {
	s.touch(m.now())
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	metrics.SessionOpened()
}

func (m *SessionManager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove closes the session and forgets it.
func (m *SessionManager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.close()
	metrics.SessionClosed()
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes every session idle for longer than the TTL and returns
// their ids.
func (m *SessionManager) Sweep() []uuid.UUID {
	now := m.now()
	m.mu.Lock()
	var expired []uuid.UUID
	for id, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.Remove(id)
		metrics.SessionExpired()
		m.logger.Info("session expired", slog.String("session", id.String()))
	}
	return expired
}

// Run sweeps every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// CloseAll removes every session.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Remove(id)
	}
}
