// internal/chains/ethereum/watcher.go
package ethereum

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	EventAccountsChanged EventType = "accountsChanged"
	EventChainChanged    EventType = "chainChanged"
)

// Event is a change observed on the wallet provider.
type Event struct {
	Type     EventType
	Accounts []string // set for accountsChanged, empty means locked or disconnected
	ChainID  string   // set for chainChanged
}

type EventHandler func(ctx context.Context, ev Event)

// Watcher polls the provider for account and chain changes and emits them to subscribers.
// The first successful poll only records a baseline.
type Watcher struct {
	provider Provider
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	handlers []EventHandler
	accounts []string
	chainID  string
	primed   bool

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewWatcher(provider Provider, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Watcher{
		provider: provider,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Subscribe registers a handler for every future event.
func (w *Watcher) Subscribe(h EventHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start runs the polling loop until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("Starting wallet provider watcher", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Poll(ctx)

		case <-w.stopChan:
			w.logger.Info("Stopping wallet provider watcher")
			return

		case <-ctx.Done():
			w.logger.Info("Context cancelled, stopping wallet provider watcher")
			return
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Poll performs a single observation and dispatches any resulting events.
func (w *Watcher) Poll(ctx context.Context) {
	var accounts []string
	if err := w.provider.Request(ctx, &accounts, "eth_accounts"); err != nil {
		w.logger.Warn("eth_accounts poll failed", zap.Error(err))
		return
	}

	var chainID string
	if err := w.provider.Request(ctx, &chainID, "eth_chainId"); err != nil {
		w.logger.Warn("eth_chainId poll failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	var events []Event
	if w.primed {
		if !sameAccounts(w.accounts, accounts) {
			events = append(events, Event{Type: EventAccountsChanged, Accounts: accounts})
		}
		if !strings.EqualFold(w.chainID, chainID) {
			events = append(events, Event{Type: EventChainChanged, ChainID: chainID})
		}
	}
	w.accounts = accounts
	w.chainID = chainID
	w.primed = true
	handlers := append([]EventHandler(nil), w.handlers...)
	w.mu.Unlock()

	for _, ev := range events {
		w.logger.Info("wallet provider event",
			zap.String("type", string(ev.Type)),
			zap.Strings("accounts", ev.Accounts),
			zap.String("chain_id", ev.ChainID))
		for _, h := range handlers {
			h(ctx, ev)
		}
	}
}

func sameAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
