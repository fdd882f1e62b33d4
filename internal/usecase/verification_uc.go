// internal/usecase/verification_uc.go
package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/repository"
	"solarcredits-service/internal/storage"
	"solarcredits-service/internal/wallet"
	xerrors "solarcredits-service/shared/utils/errors"
)

// kWh of exported energy per SRC credit
var kwhPerCredit = decimal.NewFromInt(100)

// BillUpload is one uploaded electricity bill.
type BillUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type VerificationUsecase struct {
	repo     repository.VerificationRepository
	store    storage.BillStore
	sessions Sessions
	delay    time.Duration
	logger   *zap.Logger
}

// NewVerificationUsecase builds the usecase. store may be nil, in which case bills are hashed but not kept.
func NewVerificationUsecase(
	repo repository.VerificationRepository,
	store storage.BillStore,
	sessions Sessions,
	delay time.Duration,
	logger *zap.Logger,
) *VerificationUsecase {
	return &VerificationUsecase{
		repo:     repo,
		store:    store,
		sessions: sessions,
		delay:    delay,
		logger:   logger,
	}
}

// Verify stores the bill, derives a verification result from its content hash and persists it.
func (uc *VerificationUsecase) Verify(ctx context.Context, userID string, bill BillUpload) (_ *domain.Verification, err error) {
	start := time.Now()
	defer func() { observe("verification_create", start, err) }()

	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	if !uc.sessions.Session(userID).Snapshot().IsConnected {
		return nil, &wallet.Error{Kind: wallet.KindNotConnected, Message: "Please connect your wallet first"}
	}
	if len(bill.Data) == 0 {
		return nil, xerrors.ErrEmptyDocument
	}

	sum := sha256.Sum256(bill.Data)
	hash := hex.EncodeToString(sum[:])

	v := simulateVerification(sum)
	v.ID = uuid.New()
	v.UserID = userID
	v.VerificationHash = hash
	v.BillFileName = strPtr(bill.FileName)

	// Store bill
	if uc.store != nil {
		key := billObjectKey(userID, hash, bill.FileName)
		if err := uc.store.Upload(ctx, key, bytes.NewReader(bill.Data), int64(len(bill.Data)), bill.ContentType); err != nil {
			return nil, err
		}
		v.BillObjectKey = &key
	}

	// Simulated analysis
	select {
	case <-time.After(uc.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	uc.logger.Info("bill verified",
		zap.String("user_id", userID),
		zap.String("verification_hash", hash),
		zap.String("credits", v.CreditsEarned.String()))
	return v, nil
}

func (uc *VerificationUsecase) Get(ctx context.Context, userID string, id uuid.UUID) (*domain.Verification, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	return uc.repo.GetByID(ctx, userID, id)
}

func (uc *VerificationUsecase) List(ctx context.Context, userID string) ([]*domain.Verification, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	out, err := uc.repo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Verification{}
	}
	return out, nil
}

func (uc *VerificationUsecase) Stats(ctx context.Context, userID string) (*domain.VerificationStats, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	return uc.repo.Stats(ctx, userID)
}

// simulateVerification derives readings from the content hash so the same bill always verifies the same way:
// consumption 300-600 kWh, export 800-1600 kWh, confidence 95.0-99.9.
func simulateVerification(sum [32]byte) *domain.Verification {
	consumption := 300 + int64(binary.BigEndian.Uint16(sum[0:2])%301)
	exported := 800 + int64(binary.BigEndian.Uint16(sum[2:4])%801)
	confidenceTenths := 950 + int64(sum[4]%50)

	exportedKWh := decimal.NewFromInt(exported)
	return &domain.Verification{
		ConsumptionKWh:  decimal.NewFromInt(consumption),
		ExportedKWh:     exportedKWh,
		CreditsEarned:   exportedKWh.Div(kwhPerCredit).Round(2),
		ConfidenceScore: decimal.New(confidenceTenths, -1),
		Status:          domain.VerificationStatusVerified,
	}
}

func billObjectKey(userID, hash, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("bills/%s/%s%s", userID, hash, ext)
}
