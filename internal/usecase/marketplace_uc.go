// internal/usecase/marketplace_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/repository"
	"solarcredits-service/internal/wallet"
	"solarcredits-service/pkg/units"
	xerrors "solarcredits-service/shared/utils/errors"
)

var (
	// headroom for L2 + L1 fee variability on top of the purchase cost
	purchaseGasBuffer = decimal.RequireFromString("0.002")
	// approximate INR per ETH used for the recorded price
	inrPerETH = decimal.NewFromInt(250000)
)

// bounds the history insert of a purchase whose request context already ended
const recordTimeout = 10 * time.Second

type PurchaseResult struct {
	Transaction *domain.Transaction `json:"transaction"`
	Tx          *wallet.TxResult    `json:"tx"`
	CostETH     decimal.Decimal     `json:"cost_eth"`
}

type MarketplaceUsecase struct {
	listings repository.ListingRepository
	history  *TransactionUsecase
	sessions Sessions
	logger   *zap.Logger
}

func NewMarketplaceUsecase(
	listings repository.ListingRepository,
	history *TransactionUsecase,
	sessions Sessions,
	logger *zap.Logger,
) *MarketplaceUsecase {
	return &MarketplaceUsecase{
		listings: listings,
		history:  history,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *MarketplaceUsecase) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	out, err := uc.listings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Listing{}
	}
	return out, nil
}

func (uc *MarketplaceUsecase) Get(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	return uc.listings.GetByID(ctx, id)
}

// Buy pays the producer price x amount in ETH and records the purchase.
func (uc *MarketplaceUsecase) Buy(ctx context.Context, userID string, listingID uuid.UUID, amount decimal.Decimal) (_ *PurchaseResult, err error) {
	start := time.Now()
	defer func() { observe("marketplace_buy", start, err) }()

	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	if amount.Sign() <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}

	session := uc.sessions.Session(userID)
	state := session.Snapshot()
	if !state.IsConnected {
		return nil, &wallet.Error{Kind: wallet.KindNotConnected, Message: "Please connect your wallet to purchase credits"}
	}
	if !state.IsCorrectNetwork {
		if serr := session.SwitchNetwork(ctx); serr != nil {
			uc.logger.Warn("network switch before purchase failed", zap.String("user_id", userID), zap.Error(serr))
		}
		return nil, &wallet.Error{Kind: wallet.KindWrongNetwork, Message: wallet.KindWrongNetwork.Message()}
	}

	listing, err := uc.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != "active" || amount.GreaterThan(listing.CreditsAvailable) {
		return nil, xerrors.ErrListingUnavailable
	}

	// Validate seller
	if !wallet.IsValidAddress(listing.ProducerAddress) {
		return nil, xerrors.ErrInvalidSellerAddress
	}
	if strings.EqualFold(listing.ProducerAddress, state.Address) {
		return nil, xerrors.ErrSelfPurchase
	}

	cost := listing.PricePerCredit.Mul(amount)
	balance, perr := decimal.NewFromString(state.Balance)
	if perr != nil {
		balance = decimal.Zero
	}
	if cost.Add(purchaseGasBuffer).GreaterThan(balance) {
		return nil, &wallet.Error{
			Kind: wallet.KindInsufficientFunds,
			Message: "Insufficient ETH balance. You need ~" + cost.Add(purchaseGasBuffer).StringFixed(6) +
				" ETH (including gas) but have " + balance.StringFixed(6) + " ETH",
		}
	}

	wei, werr := units.ParseEther(cost.String())
	if werr != nil || wei.Sign() <= 0 {
		return nil, &wallet.Error{Kind: wallet.KindInvalidValue, Message: "Transaction amount must be greater than 0"}
	}

	// Pay producer
	res, err := session.SendTransaction(ctx, listing.ProducerAddress, hexutil.EncodeBig(wei), "")
	if res == nil {
		return nil, err
	}
	if err != nil {
		// sent but unconfirmed; the purchase is still recorded
		uc.logger.Warn("purchase submitted without confirmation",
			zap.String("user_id", userID),
			zap.String("tx_hash", res.Hash),
			zap.Error(err))
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
	}

	priceINR := cost.Mul(inrPerETH)
	tx, err := uc.history.Add(ctx, &domain.Transaction{
		UserID:      userID,
		Type:        domain.TransactionPurchase,
		Amount:      amount,
		TxHash:      strPtr(res.Hash),
		FromAddress: strPtr(state.Address),
		ToAddress:   strPtr(listing.ProducerAddress),
		PriceINR:    &priceINR,
	})
	if err != nil {
		uc.logger.Error("purchase sent but not recorded",
			zap.String("user_id", userID),
			zap.String("tx_hash", res.Hash),
			zap.Error(err))
		return nil, &wallet.Error{
			Kind:    wallet.KindUnknown,
			Message: "Payment was sent but the purchase could not be recorded",
			TxHash:  res.Hash,
			Cause:   err,
		}
	}

	uc.logger.Info("credits purchased",
		zap.String("user_id", userID),
		zap.String("listing_id", listing.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("cost_eth", cost.String()),
		zap.String("tx_hash", res.Hash))

	return &PurchaseResult{Transaction: tx, Tx: res, CostETH: cost}, nil
}
