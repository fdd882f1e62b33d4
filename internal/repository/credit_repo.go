// internal/repository/credit_repo.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarcredits-service/internal/domain"
	xerrors "solarcredits-service/shared/utils/errors"
)

const pgForeignKeyViolation = "23503"

type PGCreditRepository struct {
	pool *pgxpool.Pool
}

func NewCreditRepository(pool *pgxpool.Pool) *PGCreditRepository {
	return &PGCreditRepository{pool: pool}
}

func (r *PGCreditRepository) Create(ctx context.Context, c *domain.CarbonCredit) error {
	query := `
		INSERT INTO carbon_credits (id, user_id, verification_id, amount, status, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.VerificationID, c.Amount, string(c.Status), c.TxHash,
	).Scan(&c.CreatedAt)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == pgForeignKeyViolation {
			return &xerrors.RepoError{
				Entity: "carbon_credit",
				Code:   pgForeignKeyViolation,
				Msg:    "verification does not exist",
				Ref:    c.ID.String(),
			}
		}
		return fmt.Errorf("failed to create carbon credit: %w", err)
	}
	return nil
}

func (r *PGCreditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.CarbonCredit, error) {
	query := `
		SELECT id, user_id, verification_id, amount, status, tx_hash, created_at
		FROM carbon_credits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list carbon credits: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.CarbonCredit, error) {
		var c domain.CarbonCredit
		var status string
		err := row.Scan(&c.ID, &c.UserID, &c.VerificationID, &c.Amount, &status, &c.TxHash, &c.CreatedAt)
		c.Status = domain.CreditStatus(status)
		return &c, err
	})
}
