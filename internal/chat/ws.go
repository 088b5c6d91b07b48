package chat

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/airpool/internal/models"
)

// ErrNoSession is returned when the target user has no live socket.
var ErrNoSession = errors.New("no ws session")

// Session is one connected user's socket. Writes are serialized per
// connection since gorilla conns allow a single concurrent writer.
type Session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *Session) Send(m models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(m)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Registry holds connected user sessions keyed by user id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry { return &Registry{sessions: make(map[string]*Session)} }

// Add registers a connection, replacing and closing any previous one for the
// same user.
func (r *Registry) Add(userID string, conn *websocket.Conn) {
	r.mu.Lock()
	prev := r.sessions[userID]
	r.sessions[userID] = &Session{conn: conn}
	r.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	s := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if s != nil {
		_ = s.Close()
	}
}

// Deliver pushes a message to the recipient's socket if one is connected.
func (r *Registry) Deliver(m models.ChatMessage) error {
	r.mu.RLock()
	s, ok := r.sessions[m.To]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	return s.Send(m)
}
