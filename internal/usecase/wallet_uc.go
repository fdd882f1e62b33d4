// internal/usecase/wallet_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/repository"
	"solarcredits-service/internal/wallet"
	xerrors "solarcredits-service/shared/utils/errors"
)

type WalletUsecase struct {
	sessions Sessions
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func NewWalletUsecase(sessions Sessions, profiles repository.ProfileRepository, logger *zap.Logger) *WalletUsecase {
	return &WalletUsecase{sessions: sessions, profiles: profiles, logger: logger}
}

// Connect connects the user's wallet and remembers the address on their profile.
func (uc *WalletUsecase) Connect(ctx context.Context, userID, email string) (_ wallet.State, err error) {
	start := time.Now()
	defer func() { observe("wallet_connect", start, err) }()

	if userID == "" {
		return wallet.State{}, xerrors.ErrUserIDRequired
	}

	state, err := uc.sessions.Session(userID).Connect(ctx)
	if err != nil {
		return state, err
	}

	if uc.profiles != nil {
		profile := &domain.Profile{ID: userID, Email: strPtr(email), WalletAddress: strPtr(state.Address)}
		if perr := uc.profiles.Upsert(ctx, profile); perr != nil {
			uc.logger.Warn("failed to save wallet address on profile",
				zap.String("user_id", userID),
				zap.Error(perr))
		}
	}
	return state, nil
}

func (uc *WalletUsecase) Disconnect(userID string) {
	uc.sessions.Remove(userID)
}

func (uc *WalletUsecase) State(userID string) wallet.State {
	return uc.sessions.Session(userID).Snapshot()
}

// Refresh re-reads network and balances.
func (uc *WalletUsecase) Refresh(ctx context.Context, userID string) (wallet.State, error) {
	s := uc.sessions.Session(userID)
	if !s.Snapshot().IsConnected {
		return s.Snapshot(), &wallet.Error{Kind: wallet.KindNotConnected, Message: wallet.KindNotConnected.Message()}
	}
	if _, err := s.CheckNetwork(ctx); err != nil {
		return s.Snapshot(), err
	}
	s.RefreshBalances(ctx)
	return s.Snapshot(), nil
}

func (uc *WalletUsecase) SwitchNetwork(ctx context.Context, userID string) (wallet.State, error) {
	s := uc.sessions.Session(userID)
	err := s.SwitchNetwork(ctx)
	return s.Snapshot(), err
}

func (uc *WalletUsecase) Send(ctx context.Context, userID, to, value, data string) (_ *wallet.TxResult, err error) {
	start := time.Now()
	defer func() { observe("wallet_send", start, err) }()
	return uc.sessions.Session(userID).SendTransaction(ctx, to, value, data)
}

func (uc *WalletUsecase) TransferToken(ctx context.Context, userID, to string, amount decimal.Decimal) (_ *wallet.TxResult, err error) {
	start := time.Now()
	defer func() { observe("wallet_transfer_token", start, err) }()
	return uc.sessions.Session(userID).TransferToken(ctx, to, amount)
}

func (uc *WalletUsecase) ApproveToken(ctx context.Context, userID, spender string, amount decimal.Decimal) (_ *wallet.TxResult, err error) {
	start := time.Now()
	defer func() { observe("wallet_approve_token", start, err) }()
	return uc.sessions.Session(userID).ApproveToken(ctx, spender, amount)
}
