// internal/repository/verification_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarcredits-service/internal/domain"
	xerrors "solarcredits-service/shared/utils/errors"
)

type PGVerificationRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationRepository(pool *pgxpool.Pool) *PGVerificationRepository {
	return &PGVerificationRepository{pool: pool}
}

const verificationColumns = `
	id, user_id, consumption_kwh, exported_kwh, credits_earned, confidence_score,
	verification_hash, bill_file_name, bill_object_key, status, created_at`

// Create inserts a verification and fills its id and timestamp
func (r *PGVerificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	query := `
		INSERT INTO verifications (
			id, user_id, consumption_kwh, exported_kwh, credits_earned, confidence_score,
			verification_hash, bill_file_name, bill_object_key, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = domain.VerificationStatusVerified
	}

	err := r.pool.QueryRow(ctx, query,
		v.ID, v.UserID, v.ConsumptionKWh, v.ExportedKWh, v.CreditsEarned, v.ConfidenceScore,
		v.VerificationHash, v.BillFileName, v.BillObjectKey, v.Status,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}
	return nil
}

func (r *PGVerificationRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE id = $1 AND user_id = $2`

	v, err := scanVerification(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}
	return v, nil
}

// ListByUser returns the user's verifications, newest first
func (r *PGVerificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Verification, error) {
	query := `SELECT ` + verificationColumns + `
		FROM verifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGVerificationRepository) Stats(ctx context.Context, userID string) (*domain.VerificationStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(credits_earned), 0),
			COALESCE(SUM(exported_kwh), 0),
			COALESCE(AVG(confidence_score), 0)
		FROM verifications
		WHERE user_id = $1
	`

	var s domain.VerificationStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.Count, &s.TotalCredits, &s.TotalExportedKWh, &s.AverageConfidence,
	); err != nil {
		return nil, fmt.Errorf("failed to compute verification stats: %w", err)
	}
	return &s, nil
}

func scanVerification(row pgx.Row) (*domain.Verification, error) {
	var v domain.Verification
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.ConsumptionKWh,
		&v.ExportedKWh,
		&v.CreditsEarned,
		&v.ConfidenceScore,
		&v.VerificationHash,
		&v.BillFileName,
		&v.BillObjectKey,
		&v.Status,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
