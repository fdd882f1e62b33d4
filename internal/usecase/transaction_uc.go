// internal/usecase/transaction_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
	"solarcredits-service/internal/repository"
	xerrors "solarcredits-service/shared/utils/errors"
)

const historyLimit = 50

type TransactionUsecase struct {
	repo       repository.TransactionRepository
	publishers []EventPublisher
	logger     *zap.Logger
}

func NewTransactionUsecase(repo repository.TransactionRepository, logger *zap.Logger, publishers ...EventPublisher) *TransactionUsecase {
	return &TransactionUsecase{repo: repo, publishers: publishers, logger: logger}
}

// List returns the user's latest transactions, newest first.
func (uc *TransactionUsecase) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	txs, err := uc.repo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	return txs, nil
}

// Add records a transaction and notifies subscribers. Publish failures do not fail the insert.
func (uc *TransactionUsecase) Add(ctx context.Context, tx *domain.Transaction) (_ *domain.Transaction, err error) {
	start := time.Now()
	defer func() { observe("transaction_add", start, err) }()

	if tx.UserID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	if !tx.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", xerrors.ErrInvalidInput, tx.Type)
	}
	if tx.Amount.Sign() <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}

	if err := uc.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	uc.logger.Info("transaction recorded",
		zap.String("user_id", tx.UserID),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()),
		zap.String("id", tx.ID.String()))

	event := &domain.TransactionEvent{
		EventType:   domain.EventTransactionCreated,
		UserID:      tx.UserID,
		Transaction: tx,
		Timestamp:   time.Now(),
	}
	for _, p := range uc.publishers {
		if perr := p.PublishTransactionEvent(ctx, event); perr != nil {
			uc.logger.Warn("failed to publish transaction event",
				zap.String("user_id", tx.UserID),
				zap.Error(perr))
		}
	}
	return tx, nil
}
