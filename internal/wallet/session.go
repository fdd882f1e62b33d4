// internal/wallet/session.go
package wallet

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
	"solarcredits-service/pkg/units"
)

// Network labels
const (
	NetworkNotConnected = "Not Connected"
	NetworkWrong        = "Wrong Network"
)

type Config struct {
	Network          ethereum.Network
	RepairBeforeSend bool
	RepairDelay      time.Duration
	ReceiptInterval  time.Duration
	ReceiptAttempts  int
	MintDelay        time.Duration
	GasBufferPercent int64
}

func DefaultConfig() Config {
	return Config{
		Network:          ethereum.ArbitrumSepolia(),
		RepairBeforeSend: true,
		RepairDelay:      500 * time.Millisecond,
		ReceiptInterval:  2 * time.Second,
		ReceiptAttempts:  60,
		MintDelay:        2 * time.Second,
		GasBufferPercent: 20,
	}
}

// State is a point-in-time copy of a session.
type State struct {
	Address          string `json:"address"`
	Balance          string `json:"balance"`
	SRCBalance       string `json:"src_balance"`
	IsConnected      bool   `json:"is_connected"`
	IsConnecting     bool   `json:"is_connecting"`
	Network          string `json:"network"`
	IsCorrectNetwork bool   `json:"is_correct_network"`
	IsContractReady  bool   `json:"is_contract_ready"`
}

func disconnectedState() State {
	return State{
		Balance:    "0",
		SRCBalance: "0",
		Network:    NetworkNotConnected,
	}
}

// Session is one user's view of the wallet provider.
type Session struct {
	provider ethereum.Provider
	cfg      Config
	logger   *zap.Logger

	probe func(ctx context.Context, url string) ethereum.ProbeResult

	mu       sync.RWMutex
	state    State
	srcUnits *big.Int
}

// NewSession creates a disconnected session. A nil provider makes every operation fail with KindProviderMissing.
func NewSession(provider ethereum.Provider, cfg Config, logger *zap.Logger) *Session {
	return &Session{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		probe:    ethereum.ProbeRPC,
		state:    disconnectedState(),
		srcUnits: new(big.Int),
	}
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Network() ethereum.Network {
	return s.cfg.Network
}

// SRCUnits returns the exact SRC balance in token units.
func (s *Session) SRCUnits() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.srcUnits)
}

// Connect requests account access and loads network and balances.
func (s *Session) Connect(ctx context.Context) (State, error) {
	if s.provider == nil {
		return s.Snapshot(), newError(KindProviderMissing, ethereum.ErrProviderMissing)
	}

	s.setConnecting(true)
	err := s.connect(ctx)
	s.setConnecting(false)
	return s.Snapshot(), err
}

func (s *Session) connect(ctx context.Context) error {
	var accounts []string
	if err := s.provider.Request(ctx, &accounts, "eth_requestAccounts"); err != nil {
		s.logger.Warn("wallet connection failed", zap.Error(err))
		return Classify(err)
	}
	if len(accounts) == 0 {
		return newErrorf(KindNotConnected, "Wallet provider returned no accounts")
	}

	addr := accounts[0]
	s.mu.Lock()
	s.state.Address = addr
	s.state.IsConnected = true
	s.mu.Unlock()

	if _, err := s.CheckNetwork(ctx); err != nil {
		s.logger.Warn("network check failed after connect", zap.Error(err))
	}
	s.RefreshBalances(ctx)

	s.logger.Info("Wallet connected", zap.String("address", addr))
	return nil
}

// Disconnect resets the session to its initial state.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = disconnectedState()
	s.srcUnits = new(big.Int)
}

// CheckNetwork compares the provider's chain with the target network.
func (s *Session) CheckNetwork(ctx context.Context) (bool, error) {
	if s.provider == nil {
		return false, newError(KindProviderMissing, ethereum.ErrProviderMissing)
	}

	var chainID string
	if err := s.provider.Request(ctx, &chainID, "eth_chainId"); err != nil {
		s.logger.Error("Error checking network", zap.Error(err))
		return false, Classify(err)
	}

	correct := s.cfg.Network.IsChain(chainID)

	s.mu.Lock()
	s.state.IsCorrectNetwork = correct
	if correct {
		s.state.Network = s.cfg.Network.Name
	} else {
		s.state.Network = NetworkWrong
	}
	s.mu.Unlock()

	return correct, nil
}

// SwitchNetwork asks the wallet to select the target chain, registering it first if unknown.
func (s *Session) SwitchNetwork(ctx context.Context) error {
	if s.provider == nil {
		return newError(KindProviderMissing, ethereum.ErrProviderMissing)
	}

	err := s.provider.Request(ctx, nil, "wallet_switchEthereumChain", s.cfg.Network.SwitchChainParams())
	if err != nil {
		code, ok := ethereum.ProviderCode(err)
		if !ok || code != ethereum.CodeUnrecognizedChain {
			s.logger.Warn("Failed to switch network", zap.Error(err))
			return Classify(err)
		}

		if addErr := s.provider.Request(ctx, nil, "wallet_addEthereumChain", s.cfg.Network.AddChainParams()); addErr != nil {
			s.logger.Warn("Failed to add network", zap.Error(addErr))
			we := Classify(addErr)
			if we.Kind == KindUnknown {
				we.Message = "Could not add " + s.cfg.Network.Name + " network"
			}
			return we
		}
		s.logger.Info("Network added to wallet", zap.String("chain_id", s.cfg.Network.ChainIDHex()))
	}

	_, err = s.CheckNetwork(ctx)
	return err
}

// RepairNetwork re-registers and re-selects the target chain so the wallet refreshes its RPC endpoint.
// Provider errors are ignored; only cancellation is reported.
func (s *Session) RepairNetwork(ctx context.Context) error {
	if s.provider == nil {
		return newError(KindProviderMissing, ethereum.ErrProviderMissing)
	}

	if err := s.provider.Request(ctx, nil, "wallet_addEthereumChain", s.cfg.Network.AddChainParams()); err != nil {
		s.logger.Debug("add chain during repair", zap.Error(err))
	}
	if err := sleep(ctx, s.cfg.RepairDelay); err != nil {
		return err
	}

	if err := s.provider.Request(ctx, nil, "wallet_switchEthereumChain", s.cfg.Network.SwitchChainParams()); err != nil {
		s.logger.Debug("switch chain during repair", zap.Error(err))
	}
	return sleep(ctx, s.cfg.RepairDelay)
}

// RefreshBalances reloads the ETH and SRC balances. Read failures degrade to "0".
func (s *Session) RefreshBalances(ctx context.Context) {
	if s.provider == nil {
		return
	}
	addr := s.Snapshot().Address
	if addr == "" {
		return
	}

	s.refreshETH(ctx, addr)
	s.refreshSRC(ctx, addr)
}

func (s *Session) refreshETH(ctx context.Context, addr string) {
	var balance hexutil.Big
	if err := s.provider.Request(ctx, &balance, "eth_getBalance", addr, "latest"); err != nil {
		s.logger.Warn("Error fetching ETH balance", zap.String("address", addr), zap.Error(err))
		s.setETH("0")
		return
	}
	s.setETH(units.FormatEther(balance.ToInt(), 4))
}

type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

func (s *Session) refreshSRC(ctx context.Context, addr string) {
	token := s.cfg.Network

	if !token.TokenDeployed() {
		s.logger.Info("SRC contract not deployed yet")
		s.setSRC(false, new(big.Int), "0")
		return
	}

	call := callMsg{
		To:   token.TokenAddress.Hex(),
		Data: hexutil.Encode(ethereum.EncodeBalanceOf(common.HexToAddress(addr))),
	}

	var result string
	if err := s.provider.Request(ctx, &result, "eth_call", call, "latest"); err != nil {
		s.logger.Warn("Error fetching SRC balance", zap.String("address", addr), zap.Error(err))
		s.setSRC(true, new(big.Int), "0")
		return
	}

	balance, err := ethereum.DecodeUint256Hex(result)
	if err != nil {
		s.logger.Warn("Error decoding SRC balance", zap.String("result", result), zap.Error(err))
		s.setSRC(true, new(big.Int), "0")
		return
	}
	s.setSRC(true, balance, units.FormatToken(balance))
}

// HandleEvent applies a provider event to the session.
func (s *Session) HandleEvent(ctx context.Context, ev ethereum.Event) {
	switch ev.Type {
	case ethereum.EventAccountsChanged:
		s.handleAccountsChanged(ctx, ev.Accounts)
	case ethereum.EventChainChanged:
		if _, err := s.CheckNetwork(ctx); err != nil {
			s.logger.Warn("network check after chain change failed", zap.Error(err))
		}
		s.RefreshBalances(ctx)
	}
}

func (s *Session) handleAccountsChanged(ctx context.Context, accounts []string) {
	current := s.Snapshot()
	if !current.IsConnected {
		return
	}

	if len(accounts) == 0 {
		s.Disconnect()
		return
	}
	if accounts[0] == current.Address {
		return
	}

	s.mu.Lock()
	s.state.Address = accounts[0]
	s.mu.Unlock()
	s.RefreshBalances(ctx)
}

func (s *Session) setConnecting(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsConnecting = v
}

func (s *Session) setETH(balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Balance = balance
}

func (s *Session) setSRC(ready bool, balance *big.Int, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsContractReady = ready
	s.state.SRCBalance = display
	s.srcUnits = balance
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
