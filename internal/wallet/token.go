// internal/wallet/token.go
package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
	"solarcredits-service/pkg/units"
)

const txHashLength = 66

// TransferToken sends SRC to a recipient.
func (s *Session) TransferToken(ctx context.Context, to string, amount decimal.Decimal) (*TxResult, error) {
	if !s.Snapshot().IsContractReady {
		return nil, newError(KindContractNotReady, nil)
	}

	want := units.ToTokenUnits(amount)
	if balance := s.SRCUnits(); want.Cmp(balance) > 0 {
		return nil, newErrorf(KindInsufficientTokenBalance, "Insufficient SRC balance. You have %s SRC", units.FormatToken(balance))
	}

	return s.sendTokenCall(ctx, to, want, ethereum.EncodeTransfer)
}

// ApproveToken lets spender move amount SRC on the user's behalf.
func (s *Session) ApproveToken(ctx context.Context, spender string, amount decimal.Decimal) (*TxResult, error) {
	if !s.Snapshot().IsContractReady {
		return nil, newError(KindContractNotReady, nil)
	}
	return s.sendTokenCall(ctx, spender, units.ToTokenUnits(amount), ethereum.EncodeApprove)
}

func (s *Session) sendTokenCall(
	ctx context.Context,
	counterparty string,
	amount *big.Int,
	encode func(common.Address, *big.Int) ([]byte, error),
) (*TxResult, error) {
	if !IsValidAddress(counterparty) {
		return nil, newError(KindInvalidAddress, nil)
	}
	if amount.Sign() <= 0 {
		return nil, newErrorf(KindInvalidValue, "Amount must be greater than zero")
	}

	data, err := encode(common.HexToAddress(counterparty), amount)
	if err != nil {
		return nil, &Error{Kind: KindInvalidValue, Message: KindInvalidValue.Message(), Cause: err}
	}

	return s.SendTransaction(ctx, s.cfg.Network.TokenAddress.Hex(), "0x0", hexutil.Encode(data))
}

// MintToken simulates minting: the deployed token restricts minting to its owner,
// so no chain call is made and only the local balance changes.
func (s *Session) MintToken(ctx context.Context, amount decimal.Decimal, verificationHash string) (*TxResult, error) {
	if amount.Sign() <= 0 {
		return nil, newErrorf(KindInvalidValue, "Amount must be greater than zero")
	}

	if err := sleep(ctx, s.cfg.MintDelay); err != nil {
		return nil, err
	}

	hash, err := simulatedTxHash(time.Now(), verificationHash)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint hash: %w", err)
	}

	s.mu.Lock()
	s.srcUnits = new(big.Int).Add(s.srcUnits, units.ToTokenUnits(amount))
	s.state.SRCBalance = units.FormatToken(s.srcUnits)
	s.mu.Unlock()

	s.logger.Info("SRC mint simulated",
		zap.String("tx_hash", hash),
		zap.String("amount", amount.String()))

	return &TxResult{Hash: hash, Status: TxConfirmed}, nil
}

// simulatedTxHash builds 0x + hex(unix ms) + 16 random hex + first 24 chars of the
// verification hash, right-padded with zeros to a 66-char hash.
func simulatedTxHash(now time.Time, verificationHash string) (string, error) {
	random := make([]byte, 8)
	if _, err := rand.Read(random); err != nil {
		return "", err
	}

	prefix := verificationHash
	if len(prefix) > 24 {
		prefix = prefix[:24]
	}

	hash := "0x" + strconv.FormatInt(now.UnixMilli(), 16) + hex.EncodeToString(random) + prefix
	if len(hash) >= txHashLength {
		return hash[:txHashLength], nil
	}
	return hash + strings.Repeat("0", txHashLength-len(hash)), nil
}

// RetireToken burns amount SRC from the local balance. Like minting, retirement is simulated.
func (s *Session) RetireToken(ctx context.Context, amount decimal.Decimal) (*TxResult, error) {
	if amount.Sign() <= 0 {
		return nil, newErrorf(KindInvalidValue, "Amount must be greater than zero")
	}

	want := units.ToTokenUnits(amount)
	if balance := s.SRCUnits(); want.Cmp(balance) > 0 {
		return nil, newErrorf(KindInsufficientTokenBalance, "Insufficient SRC balance. You have %s SRC", units.FormatToken(balance))
	}

	if err := sleep(ctx, s.cfg.MintDelay); err != nil {
		return nil, err
	}

	hash, err := simulatedTxHash(time.Now(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to generate retirement hash: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if want.Cmp(s.srcUnits) > 0 {
		return nil, newErrorf(KindInsufficientTokenBalance, "Insufficient SRC balance. You have %s SRC", units.FormatToken(s.srcUnits))
	}
	s.srcUnits = new(big.Int).Sub(s.srcUnits, want)
	s.state.SRCBalance = units.FormatToken(s.srcUnits)

	s.logger.Info("SRC retirement simulated",
		zap.String("tx_hash", hash),
		zap.String("amount", amount.String()))

	return &TxResult{Hash: hash, Status: TxConfirmed}, nil
}
