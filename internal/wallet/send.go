// internal/wallet/send.go
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
)

var (
	addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	valuePattern   = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)
)

// fallback limit for a plain value transfer whose estimate failed
const plainTransferGas = 21000

type TxStatus string

const (
	TxConfirmed TxStatus = "confirmed"
	TxSubmitted TxStatus = "submitted" // accepted by the provider, no receipt yet
)

type TxResult struct {
	Hash        string   `json:"tx_hash"`
	Status      TxStatus `json:"status"`
	ExplorerURL string   `json:"explorer_url,omitempty"`
}

type txParams struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Value   string `json:"value"`
	ChainID string `json:"chainId"`
	Data    string `json:"data,omitempty"`
	Gas     string `json:"gas,omitempty"`
}

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// SendTransaction submits a transaction through the wallet provider and waits for its receipt.
// value is a 0x-prefixed hex quantity in wei; data is optional call data.
// If ctx ends after the provider accepted the transaction, the submitted result
// is returned together with ctx's error.
func (s *Session) SendTransaction(ctx context.Context, to, value, data string) (*TxResult, error) {
	if s.provider == nil {
		return nil, newError(KindProviderMissing, ethereum.ErrProviderMissing)
	}

	state := s.Snapshot()
	if !state.IsConnected || state.Address == "" {
		return nil, newError(KindNotConnected, nil)
	}
	if !state.IsCorrectNetwork {
		return nil, newError(KindWrongNetwork, nil)
	}

	// Validate params
	if !IsValidAddress(to) {
		return nil, newError(KindInvalidAddress, nil)
	}
	if !valuePattern.MatchString(value) {
		return nil, newError(KindInvalidValue, nil)
	}

	if s.cfg.RepairBeforeSend {
		if err := s.RepairNetwork(ctx); err != nil {
			return nil, err
		}
	}

	tx := txParams{
		From:    state.Address,
		To:      to,
		Value:   value,
		ChainID: s.cfg.Network.ChainIDHex(),
		Data:    data,
	}

	// Estimate gas
	gas, err := s.estimateGas(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.Gas = hexutil.EncodeUint64(gas)

	// Preflight balance check
	if err := s.preflight(ctx, tx, gas); err != nil {
		return nil, err
	}

	// Send
	hash, err := s.submit(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction sent",
		zap.String("tx_hash", hash),
		zap.String("from", tx.From),
		zap.String("to", tx.To),
		zap.String("value", tx.Value),
		zap.Uint64("gas", gas))

	// Wait for receipt
	result := &TxResult{Hash: hash, Status: TxSubmitted, ExplorerURL: s.cfg.Network.TxURL(hash)}
	status, found, err := s.waitForReceipt(ctx, hash)
	if err != nil {
		s.logger.Warn("Receipt polling interrupted, transaction left unconfirmed",
			zap.String("tx_hash", hash),
			zap.Error(err))
		return result, err
	}

	if !found {
		s.logger.Warn("Transaction receipt not found in time", zap.String("tx_hash", hash))
		return result, nil
	}
	if status != 1 {
		return nil, &Error{Kind: KindReverted, Message: "Transaction failed", TxHash: hash}
	}

	result.Status = TxConfirmed
	s.RefreshBalances(ctx)
	return result, nil
}

func (s *Session) estimateGas(ctx context.Context, tx txParams) (uint64, error) {
	var estimate hexutil.Uint64
	err := s.provider.Request(ctx, &estimate, "eth_estimateGas", tx)
	if err == nil {
		return uint64(estimate) * uint64(100+s.cfg.GasBufferPercent) / 100, nil
	}

	s.logger.Warn("Gas estimation failed", zap.String("to", tx.To), zap.Error(err))

	if ethereum.IsTransportError(err) {
		return 0, s.rpcUnreachable(ctx, err)
	}
	if tx.Data == "" || tx.Data == "0x" {
		return plainTransferGas, nil
	}

	we := Classify(err)
	kind := we.Kind
	if kind == KindUnknown {
		kind = KindReverted
	}
	return 0, &Error{Kind: kind, Message: "Transaction will fail: " + we.Message, Cause: err}
}

func (s *Session) preflight(ctx context.Context, tx txParams, gas uint64) error {
	var balance, gasPrice hexutil.Big

	err := s.provider.Request(ctx, &balance, "eth_getBalance", tx.From, "latest")
	if err == nil {
		err = s.provider.Request(ctx, &gasPrice, "eth_gasPrice")
	}
	if err != nil {
		if ethereum.IsTransportError(err) {
			return s.rpcUnreachable(ctx, err)
		}
		s.logger.Warn("Preflight check failed, continuing", zap.Error(err))
		return nil
	}

	value, err := hexutil.DecodeBig(normalizeQuantity(tx.Value))
	if err != nil {
		return &Error{Kind: KindInvalidValue, Message: KindInvalidValue.Message(), Cause: err}
	}

	required := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice.ToInt())
	required.Add(required, value)

	if balance.ToInt().Cmp(required) < 0 {
		return &Error{Kind: KindInsufficientFunds, Message: "Insufficient funds for value + gas"}
	}
	return nil
}

func (s *Session) submit(ctx context.Context, tx txParams) (string, error) {
	var hash string
	err := s.provider.Request(ctx, &hash, "eth_sendTransaction", tx)
	if err == nil {
		return hash, nil
	}
	if !ethereum.IsTransportError(err) {
		return "", Classify(err)
	}

	// Retry once after repairing
	s.logger.Warn("RPC fetch error, repairing network and retrying", zap.Error(err))
	if repairErr := s.RepairNetwork(ctx); repairErr != nil {
		return "", repairErr
	}

	err = s.provider.Request(ctx, &hash, "eth_sendTransaction", tx)
	if err == nil {
		return hash, nil
	}
	if ethereum.IsTransportError(err) {
		return "", s.rpcUnreachable(ctx, err)
	}
	return "", Classify(err)
}

// rpcUnreachable diagnoses the configured RPC endpoint directly.
func (s *Session) rpcUnreachable(ctx context.Context, cause error) *Error {
	urls := s.cfg.Network.RPCURLs
	if len(urls) == 0 {
		return &Error{Kind: KindRPCUnreachable, Message: "RPC connection failed (no RPC configured).", Cause: cause}
	}

	probe := s.probe(ctx, urls[0])
	s.logger.Info("RPC probe", zap.String("rpc_url", urls[0]), zap.Bool("ok", probe.OK), zap.String("reason", probe.Reason))

	if !probe.OK {
		return &Error{
			Kind: KindRPCUnreachable,
			Message: fmt.Sprintf("RPC endpoint is unreachable (%s). This is usually a firewall or VPN issue. "+
				"Configure another Arbitrum Sepolia RPC such as https://sepolia-rollup.arbitrum.io/rpc "+
				"or https://arbitrum-sepolia-rpc.publicnode.com.", probe.Reason),
			Cause: cause,
		}
	}
	return &Error{
		Kind: KindRPCUnreachable,
		Message: "The wallet provider cannot reach the RPC even though it responds. " +
			"Restart the wallet provider, disable VPN, then remove and re-add the Arbitrum Sepolia network.",
		Cause: cause,
	}
}

// normalizeQuantity strips leading zeros hexutil rejects ("0x00" -> "0x0").
func normalizeQuantity(v string) string {
	digits := v[2:]
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	return "0x" + digits
}
