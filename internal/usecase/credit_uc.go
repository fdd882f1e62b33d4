// internal/usecase/credit_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/repository"
	"solarcredits-service/internal/wallet"
	xerrors "solarcredits-service/shared/utils/errors"
)

var (
	// minimum ETH a wallet must hold before minting
	minMintGasBalance = decimal.RequireFromString("0.001")
	// kg of CO2 offset by one SRC
	co2PerCredit = decimal.NewFromInt(100)
)

type CreditResult struct {
	Credit      *domain.CarbonCredit `json:"credit"`
	Transaction *domain.Transaction  `json:"transaction"`
	Tx          *wallet.TxResult     `json:"tx"`
}

type CreditUsecase struct {
	credits       repository.CreditRepository
	verifications repository.VerificationRepository
	history       *TransactionUsecase
	sessions      Sessions
	logger        *zap.Logger
}

func NewCreditUsecase(
	credits repository.CreditRepository,
	verifications repository.VerificationRepository,
	history *TransactionUsecase,
	sessions Sessions,
	logger *zap.Logger,
) *CreditUsecase {
	return &CreditUsecase{
		credits:       credits,
		verifications: verifications,
		history:       history,
		sessions:      sessions,
		logger:        logger,
	}
}

// CreditsRequired is the number of whole SRC needed to offset co2Kg.
func CreditsRequired(co2Kg decimal.Decimal) (decimal.Decimal, error) {
	if co2Kg.Sign() <= 0 {
		return decimal.Zero, xerrors.ErrInvalidAmount
	}
	return co2Kg.Div(co2PerCredit).Ceil(), nil
}

// MintFromVerification mints the credits earned by a verification into the user's wallet.
func (uc *CreditUsecase) MintFromVerification(ctx context.Context, userID string, verificationID uuid.UUID) (_ *CreditResult, err error) {
	start := time.Now()
	defer func() { observe("credit_mint", start, err) }()

	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}

	session := uc.sessions.Session(userID)
	state := session.Snapshot()
	if !state.IsConnected {
		return nil, &wallet.Error{Kind: wallet.KindNotConnected, Message: "Please connect your wallet to mint credits"}
	}
	if !state.IsCorrectNetwork {
		if serr := session.SwitchNetwork(ctx); serr != nil {
			uc.logger.Warn("network switch before mint failed", zap.String("user_id", userID), zap.Error(serr))
		}
		return nil, &wallet.Error{Kind: wallet.KindWrongNetwork, Message: wallet.KindWrongNetwork.Message()}
	}
	if balance, perr := decimal.NewFromString(state.Balance); perr != nil || balance.LessThan(minMintGasBalance) {
		return nil, &wallet.Error{Kind: wallet.KindInsufficientFunds, Message: "You need ETH for gas fees. Get testnet ETH from a faucet."}
	}

	v, err := uc.verifications.GetByID(ctx, userID, verificationID)
	if err != nil {
		return nil, err
	}

	res, err := session.MintToken(ctx, v.CreditsEarned, v.VerificationHash)
	if err != nil {
		return nil, err
	}

	credit := &domain.CarbonCredit{
		UserID:         userID,
		VerificationID: &v.ID,
		Amount:         v.CreditsEarned,
		Status:         domain.CreditMinted,
		TxHash:         strPtr(res.Hash),
	}
	if err := uc.credits.Create(ctx, credit); err != nil {
		return nil, err
	}

	tx, err := uc.history.Add(ctx, &domain.Transaction{
		UserID:    userID,
		Type:      domain.TransactionMint,
		Amount:    v.CreditsEarned,
		TxHash:    strPtr(res.Hash),
		ToAddress: strPtr(state.Address),
	})
	if err != nil {
		return nil, err
	}

	return &CreditResult{Credit: credit, Transaction: tx, Tx: res}, nil
}

// Retire permanently removes amount SRC from circulation for an ESG claim.
func (uc *CreditUsecase) Retire(ctx context.Context, userID string, amount decimal.Decimal) (_ *CreditResult, err error) {
	start := time.Now()
	defer func() { observe("credit_retire", start, err) }()

	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	if amount.Sign() <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}

	session := uc.sessions.Session(userID)
	state := session.Snapshot()
	if !state.IsConnected {
		return nil, &wallet.Error{Kind: wallet.KindNotConnected, Message: wallet.KindNotConnected.Message()}
	}

	res, err := session.RetireToken(ctx, amount)
	if err != nil {
		return nil, err
	}

	credit := &domain.CarbonCredit{
		UserID: userID,
		Amount: amount,
		Status: domain.CreditRetired,
		TxHash: strPtr(res.Hash),
	}
	if err := uc.credits.Create(ctx, credit); err != nil {
		return nil, err
	}

	tx, err := uc.history.Add(ctx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TransactionRetire,
		Amount:      amount,
		TxHash:      strPtr(res.Hash),
		FromAddress: strPtr(state.Address),
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("credits retired",
		zap.String("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", res.Hash))

	return &CreditResult{Credit: credit, Transaction: tx, Tx: res}, nil
}

func (uc *CreditUsecase) List(ctx context.Context, userID string) ([]*domain.CarbonCredit, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	out, err := uc.credits.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.CarbonCredit{}
	}
	return out, nil
}
