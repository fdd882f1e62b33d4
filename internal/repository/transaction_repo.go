// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarcredits-service/internal/domain"
)

type PGTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *PGTransactionRepository {
	return &PGTransactionRepository{pool: pool}
}

func (r *PGTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, type, amount, tx_hash, from_address, to_address, price_inr
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount, tx.TxHash, tx.FromAddress, tx.ToAddress, tx.PriceINR,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByUser returns the newest transactions first
func (r *PGTransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, tx_hash, from_address, to_address, price_inr, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Transaction, error) {
		var tx domain.Transaction
		var txType string
		err := row.Scan(
			&tx.ID,
			&tx.UserID,
			&txType,
			&tx.Amount,
			&tx.TxHash,
			&tx.FromAddress,
			&tx.ToAddress,
			&tx.PriceINR,
			&tx.CreatedAt,
		)
		tx.Type = domain.TransactionType(txType)
		return &tx, err
	})
}
