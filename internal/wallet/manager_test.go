package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
)

func TestManagerSessions(t *testing.T) {
	m := NewManager(happyProvider(), testConfig(), zap.NewNop())

	a := m.Session("user-a")
	assert.Same(t, a, m.Session("user-a"))
	assert.NotSame(t, a, m.Session("user-b"))

	_, ok := m.Lookup("user-c")
	assert.False(t, ok)

	m.Remove("user-a")
	_, ok = m.Lookup("user-a")
	assert.False(t, ok)
}

func TestManagerFansOutEvents(t *testing.T) {
	ctx := context.Background()
	m := NewManager(happyProvider(), testConfig(), zap.NewNop())

	a := m.Session("user-a")
	b := m.Session("user-b")
	_, err := a.Connect(ctx)
	require.NoError(t, err)
	_, err = b.Connect(ctx)
	require.NoError(t, err)

	m.HandleEvent(ctx, ethereum.Event{Type: ethereum.EventAccountsChanged})

	assert.False(t, a.Snapshot().IsConnected)
	assert.False(t, b.Snapshot().IsConnected)
}
