// internal/wallet/receipt.go
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

type receiptStatus struct {
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber *hexutil.Big   `json:"blockNumber"`
}

// waitForReceipt polls for the receipt of hash, sleeping before each attempt.
// found is false when no receipt appeared within the configured attempts.
func (s *Session) waitForReceipt(ctx context.Context, hash string) (status uint64, found bool, err error) {
	for attempt := 1; attempt <= s.cfg.ReceiptAttempts; attempt++ {
		if err := sleep(ctx, s.cfg.ReceiptInterval); err != nil {
			return 0, false, err
		}

		var receipt *receiptStatus
		if err := s.provider.Request(ctx, &receipt, "eth_getTransactionReceipt", hash); err != nil {
			if ctx.Err() != nil {
				return 0, false, ctx.Err()
			}
			s.logger.Warn("receipt poll failed",
				zap.String("tx_hash", hash),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if receipt == nil {
			continue
		}

		s.logger.Info("Transaction receipt received",
			zap.String("tx_hash", hash),
			zap.Uint64("status", uint64(receipt.Status)),
			zap.Int("attempt", attempt))
		return uint64(receipt.Status), true, nil
	}
	return 0, false, nil
}
