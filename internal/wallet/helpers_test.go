package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
	"solarcredits-service/internal/chains/ethereum/ethtest"
	"solarcredits-service/pkg/units"
)

const (
	testAccount   = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testRecipient = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	testTxHash    = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"

	oneEther = "0xde0b6b3a7640000"
	oneGwei  = "0x3b9aca00"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RepairDelay = 0
	cfg.ReceiptInterval = time.Millisecond
	cfg.MintDelay = 10 * time.Millisecond
	return cfg
}

func tokenWord(amount string) string {
	u := units.ToTokenUnits(decimal.RequireFromString(amount))
	return hexutil.Encode(common.LeftPadBytes(u.Bytes(), 32))
}

// happyProvider answers every method used by a session on the correct chain.
func happyProvider() *ethtest.Provider {
	return ethtest.NewProvider().
		Return("eth_requestAccounts", []string{testAccount}).
		Return("eth_accounts", []string{testAccount}).
		Return("eth_chainId", "0x66eee").
		Return("eth_getBalance", oneEther).
		Return("eth_call", tokenWord("100")).
		Return("eth_estimateGas", "0x5208").
		Return("eth_gasPrice", oneGwei).
		Return("eth_sendTransaction", testTxHash).
		Return("eth_getTransactionReceipt", map[string]string{"status": "0x1", "blockNumber": "0x10"}).
		Return("wallet_addEthereumChain", nil).
		Return("wallet_switchEthereumChain", nil)
}

func newTestSession(t *testing.T, p ethereum.Provider, cfg Config) *Session {
	t.Helper()
	return NewSession(p, cfg, zap.NewNop())
}

func stubProbe(result ethereum.ProbeResult) func(context.Context, string) ethereum.ProbeResult {
	return func(context.Context, string) ethereum.ProbeResult { return result }
}
