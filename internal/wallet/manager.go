// internal/wallet/manager.go
package wallet

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
)

// Manager owns one Session per user over a shared provider.
type Manager struct {
	provider ethereum.Provider
	cfg      Config
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(provider ethereum.Provider, cfg Config, logger *zap.Logger) *Manager {
	return &Manager{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Session returns the user's session, creating a disconnected one on first use.
func (m *Manager) Session(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = NewSession(m.provider, m.cfg, m.logger.With(zap.String("user_id", userID)))
	m.sessions[userID] = s
	return s
}

func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Remove disconnects and forgets the user's session.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		s.Disconnect()
	}
}

func (m *Manager) Network() ethereum.Network {
	return m.cfg.Network
}

// HandleEvent fans a provider event out to every session.
func (m *Manager) HandleEvent(ctx context.Context, ev ethereum.Event) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.HandleEvent(ctx, ev)
	}
}
