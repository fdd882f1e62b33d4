package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Message is the envelope written to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Connection wraps websocket.Conn with metadata
type Connection struct {
	Conn   *websocket.Conn
	UserID string

	lastSeen atomic.Int64 // unix nanos
	writeMu  sync.Mutex
}

// Touch marks the connection as alive.
func (c *Connection) Touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *Connection) idle() time.Duration {
	return time.Since(time.Unix(0, c.lastSeen.Load()))
}

// WriteJSON serialises writers on the underlying connection.
func (c *Connection) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(v)
}

type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{} // userID -> set of connections
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Add registers a connection for a user
func (m *Manager) Add(userID string, conn *websocket.Conn) *Connection {
	c := &Connection{Conn: conn, UserID: userID}
	c.Touch()

	m.mu.Lock()
	if _, ok := m.connections[userID]; !ok {
		m.connections[userID] = make(map[*Connection]struct{})
	}
	m.connections[userID][c] = struct{}{}
	total := len(m.connections[userID])
	m.mu.Unlock()

	m.logger.Info("WS connected", zap.String("user_id", userID), zap.Int("total", total))
	return c
}

// Remove disconnects and removes a connection
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	if conns, ok := m.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(m.connections, c.UserID)
		}
	}
	m.mu.Unlock()

	_ = c.Conn.Close()
	m.logger.Info("WS disconnected", zap.String("user_id", c.UserID))
}

// Users lists users with at least one open connection.
func (m *Manager) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.connections))
	for id := range m.connections {
		out = append(out, id)
	}
	return out
}

// Send sends a JSON message to all connections of a user
func (m *Manager) Send(userID string, msg Message) {
	for _, c := range m.snapshot(userID) {
		if err := c.WriteJSON(msg); err != nil {
			m.logger.Warn("failed WS send", zap.String("user_id", userID), zap.Error(err))
			go m.Remove(c)
		}
	}
}

// Broadcast sends to all users
func (m *Manager) Broadcast(msg Message) {
	for _, userID := range m.Users() {
		m.Send(userID, msg)
	}
}

func (m *Manager) snapshot(userID string) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make([]*Connection, 0, len(m.connections[userID]))
	for c := range m.connections[userID] {
		conns = append(conns, c)
	}
	return conns
}

// Heartbeat pings all connections periodically and drops the ones that stopped answering.
func (m *Manager) Heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var stale, live []*Connection
		m.mu.RLock()
		for _, conns := range m.connections {
			for c := range conns {
				if c.idle() > 2*interval {
					stale = append(stale, c)
				} else {
					live = append(live, c)
				}
			}
		}
		m.mu.RUnlock()

		for _, c := range stale {
			m.Remove(c)
		}
		for _, c := range live {
			_ = c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
		}
	}
}
