// internal/chains/ethereum/health_checker.go
package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainReader is the part of ethclient.Client the health check needs.
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

var _ ChainReader = (*ethclient.Client)(nil)

// HealthChecker verifies that an RPC endpoint is live and serves the expected chain.
type HealthChecker struct {
	expectedChainID *big.Int
}

func NewHealthChecker(network Network) *HealthChecker {
	return &HealthChecker{expectedChainID: network.ChainID}
}

// CheckHealth performs a health check on an RPC client
func (h *HealthChecker) CheckHealth(ctx context.Context, client ChainReader) error {
	// Check 1: block number (basic connectivity)
	blockNumber, err := client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block number: %w", err)
	}
	if blockNumber == 0 {
		return fmt.Errorf("block number is zero, chain may not be synced")
	}

	// Check 2: chain id (right network)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}
	if chainID.Cmp(h.expectedChainID) != 0 {
		return fmt.Errorf("chain ID mismatch: expected %s, got %s", h.expectedChainID, chainID)
	}

	return nil
}
