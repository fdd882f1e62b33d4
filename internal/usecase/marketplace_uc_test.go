package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum"
	"solarcredits-service/internal/chains/ethereum/ethtest"
	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/wallet"
	xerrors "solarcredits-service/shared/utils/errors"
)

type marketFixture struct {
	uc        *MarketplaceUsecase
	provider  *ethtest.Provider
	txRepo    *fakeTransactionRepo
	publisher *recordingPublisher
	listing   *domain.Listing
}

func newMarketFixture(t *testing.T, p *ethtest.Provider, m *wallet.Manager) *marketFixture {
	t.Helper()
	listing := &domain.Listing{
		ID:               uuid.New(),
		ProducerName:     "Sunrise Solar Farm",
		ProducerAddress:  testSeller,
		Location:         "Rajasthan, India",
		CreditsAvailable: dec("150"),
		PricePerCredit:   dec("0.1"),
		Rating:           dec("4.8"),
		Verified:         true,
		Status:           "active",
	}
	txRepo := &fakeTransactionRepo{}
	pub := &recordingPublisher{}
	history := NewTransactionUsecase(txRepo, zap.NewNop(), pub)
	listings := &fakeListingRepo{rows: map[uuid.UUID]*domain.Listing{listing.ID: listing}}

	return &marketFixture{
		uc:        NewMarketplaceUsecase(listings, history, m, zap.NewNop()),
		provider:  p,
		txRepo:    txRepo,
		publisher: pub,
		listing:   listing,
	}
}

func sentParams(t *testing.T, p *ethtest.Provider) map[string]string {
	t.Helper()
	for _, c := range p.Calls() {
		if c.Method != "eth_sendTransaction" {
			continue
		}
		raw, err := json.Marshal(c.Params[0])
		require.NoError(t, err)
		var out map[string]string
		require.NoError(t, json.Unmarshal(raw, &out))
		return out
	}
	t.Fatal("eth_sendTransaction was not called")
	return nil
}

func TestBuyPaysProducerAndRecordsPurchase(t *testing.T) {
	p := walletProvider()
	f := newMarketFixture(t, p, connectedManager(t, p))

	res, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("2"))
	require.NoError(t, err)

	assert.Equal(t, "0.2", res.CostETH.String())
	assert.Equal(t, wallet.TxConfirmed, res.Tx.Status)

	tx := sentParams(t, p)
	assert.Equal(t, testSeller, tx["to"])
	assert.Equal(t, "0x2c68af0bb140000", tx["value"])
	assert.Empty(t, tx["data"])

	require.Len(t, f.txRepo.rows, 1)
	rec := f.txRepo.rows[0]
	assert.Equal(t, domain.TransactionPurchase, rec.Type)
	assert.Equal(t, "2", rec.Amount.String())
	assert.Equal(t, testTxHash, *rec.TxHash)
	assert.Equal(t, testAccount, *rec.FromAddress)
	assert.Equal(t, testSeller, *rec.ToAddress)
	assert.Equal(t, "50000", rec.PriceINR.String())

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventTransactionCreated, f.publisher.events[0].EventType)
}

func TestBuyRejections(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, newManager(p))
		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
		assert.Equal(t, wallet.KindNotConnected, wallet.KindOf(err))
	})

	t.Run("wrong network triggers switch", func(t *testing.T) {
		p := walletProvider().Return("eth_chainId", "0x1")
		f := newMarketFixture(t, p, connectedManager(t, p))

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
		assert.Equal(t, wallet.KindWrongNetwork, wallet.KindOf(err))
		assert.Equal(t, 1, p.Count("wallet_switchEthereumChain"))
		assert.Zero(t, p.Count("eth_sendTransaction"))
	})

	t.Run("own listing", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))
		f.listing.ProducerAddress = strings.ToLower(testAccount)

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
		assert.ErrorIs(t, err, xerrors.ErrSelfPurchase)
	})

	t.Run("invalid seller", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))
		f.listing.ProducerAddress = "0xDemoAddress"

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
		assert.ErrorIs(t, err, xerrors.ErrInvalidSellerAddress)
	})

	t.Run("cost plus gas buffer exceeds balance", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("10"))
		assert.Equal(t, wallet.KindInsufficientFunds, wallet.KindOf(err))
		assert.Contains(t, err.Error(), "1.002000 ETH")
		assert.Zero(t, p.Count("eth_sendTransaction"))
	})

	t.Run("more than available", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("150.5"))
		assert.ErrorIs(t, err, xerrors.ErrListingUnavailable)
	})

	t.Run("zero amount", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("0"))
		assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)
	})

	t.Run("free listing", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))
		f.listing.PricePerCredit = dec("0")

		_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
		assert.Equal(t, wallet.KindInvalidValue, wallet.KindOf(err))
	})

	t.Run("unknown listing", func(t *testing.T) {
		p := walletProvider()
		f := newMarketFixture(t, p, connectedManager(t, p))

		_, err := f.uc.Buy(context.Background(), testUser, uuid.New(), dec("1"))
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}

func TestBuyRejectedByUserRecordsNothing(t *testing.T) {
	p := walletProvider().Fail("eth_sendTransaction", &ethereum.ProviderError{
		Code:    ethereum.CodeUserRejected,
		Message: "User denied transaction signature.",
	})
	f := newMarketFixture(t, p, connectedManager(t, p))

	_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
	assert.Equal(t, wallet.KindUserRejected, wallet.KindOf(err))
	assert.Empty(t, f.txRepo.rows)
}

func TestBuyRecordsSubmittedPurchaseWhenConfirmationIsCut(t *testing.T) {
	p := walletProvider()
	cfg := walletConfig()
	cfg.ReceiptInterval = time.Hour
	m := wallet.NewManager(p, cfg, zap.NewNop())
	_, err := m.Session(testUser).Connect(context.Background())
	require.NoError(t, err)
	p.Reset()
	f := newMarketFixture(t, p, m)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	res, err := f.uc.Buy(ctx, testUser, f.listing.ID, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, wallet.TxSubmitted, res.Tx.Status)
	assert.Equal(t, testTxHash, res.Tx.Hash)

	require.Len(t, f.txRepo.rows, 1)
	assert.Equal(t, testTxHash, *f.txRepo.rows[0].TxHash)
}

func TestBuyUnrecordedPaymentKeepsHash(t *testing.T) {
	p := walletProvider()
	f := newMarketFixture(t, p, connectedManager(t, p))
	f.txRepo.err = errors.New("connection reset by peer")

	_, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))

	var we *wallet.Error
	require.ErrorAs(t, err, &we)
	assert.Equal(t, testTxHash, we.TxHash)
	assert.Equal(t, 1, p.Count("eth_sendTransaction"))
}

func TestBuySmallestPriceSendsOneWei(t *testing.T) {
	p := walletProvider()
	f := newMarketFixture(t, p, connectedManager(t, p))
	f.listing.PricePerCredit = dec("0.000000000000000001")

	res, err := f.uc.Buy(context.Background(), testUser, f.listing.ID, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000001", res.CostETH.String())
	assert.Equal(t, "0x1", sentParams(t, p)["value"])
}
