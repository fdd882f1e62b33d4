package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"solarcredits-service/internal/chains/ethereum/ethtest"
	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/wallet"
	xerrors "solarcredits-service/shared/utils/errors"
)

const (
	testUser    = "8d0d7a2e-2f4b-4a8e-9c55-0d4b3f1c6a11"
	testAccount = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	testSeller  = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	testTxHash  = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
)

// 100 SRC as a 32-byte word
const hundredSRC = "0x0000000000000000000000000000000000000000000000056bc75e2d63100000"

func walletProvider() *ethtest.Provider {
	return ethtest.NewProvider().
		Return("eth_requestAccounts", []string{testAccount}).
		Return("eth_accounts", []string{testAccount}).
		Return("eth_chainId", "0x66eee").
		Return("eth_getBalance", "0xde0b6b3a7640000").
		Return("eth_call", hundredSRC).
		Return("eth_estimateGas", "0x5208").
		Return("eth_gasPrice", "0x3b9aca00").
		Return("eth_sendTransaction", testTxHash).
		Return("eth_getTransactionReceipt", map[string]string{"status": "0x1", "blockNumber": "0x10"}).
		Return("wallet_addEthereumChain", nil).
		Return("wallet_switchEthereumChain", nil)
}

func walletConfig() wallet.Config {
	cfg := wallet.DefaultConfig()
	cfg.RepairDelay = 0
	cfg.ReceiptInterval = time.Millisecond
	cfg.MintDelay = time.Millisecond
	return cfg
}

func newManager(p *ethtest.Provider) *wallet.Manager {
	return wallet.NewManager(p, walletConfig(), zap.NewNop())
}

func connectedManager(t *testing.T, p *ethtest.Provider) *wallet.Manager {
	t.Helper()
	m := newManager(p)
	_, err := m.Session(testUser).Connect(context.Background())
	require.NoError(t, err)
	p.Reset()
	return m
}

// ===============================
// REPOSITORY FAKES
// ===============================

type fakeTransactionRepo struct {
	mu   sync.Mutex
	rows []*domain.Transaction
	err  error
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	r.rows = append(r.rows, tx)
	return nil
}

func (r *fakeTransactionRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

type fakeVerificationRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.Verification
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{rows: make(map[uuid.UUID]*domain.Verification)}
}

func (r *fakeVerificationRepo) Create(_ context.Context, v *domain.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.CreatedAt = time.Now()
	r.rows[v.ID] = v
	return nil
}

func (r *fakeVerificationRepo) GetByID(_ context.Context, userID string, id uuid.UUID) (*domain.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok || v.UserID != userID {
		return nil, xerrors.ErrNotFound
	}
	return v, nil
}

func (r *fakeVerificationRepo) ListByUser(_ context.Context, userID string, _ int) ([]*domain.Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Verification
	for _, v := range r.rows {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVerificationRepo) Stats(_ context.Context, userID string) (*domain.VerificationStats, error) {
	return &domain.VerificationStats{}, nil
}

type fakeListingRepo struct {
	rows map[uuid.UUID]*domain.Listing
}

func (r *fakeListingRepo) List(_ context.Context, _ domain.ListingFilter) ([]*domain.Listing, error) {
	var out []*domain.Listing
	for _, l := range r.rows {
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeListingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return l, nil
}

type fakeCreditRepo struct {
	mu   sync.Mutex
	rows []*domain.CarbonCredit
}

func (r *fakeCreditRepo) Create(_ context.Context, c *domain.CarbonCredit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	r.rows = append(r.rows, c)
	return nil
}

func (r *fakeCreditRepo) ListByUser(_ context.Context, userID string, _ int) ([]*domain.CarbonCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CarbonCredit
	for _, c := range r.rows {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	err      error
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.profiles == nil {
		r.profiles = make(map[string]*domain.Profile)
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

// ===============================
// OTHER FAKES
// ===============================

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev *domain.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func (s *memoryStore) Upload(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
		s.types = make(map[string]string)
	}
	s.objects[name] = buf.Bytes()
	s.types[name] = contentType
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
