// internal/repository/profile_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarcredits-service/internal/domain"
	xerrors "solarcredits-service/shared/utils/errors"
)

type PGProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *PGProfileRepository {
	return &PGProfileRepository{pool: pool}
}

// Upsert creates the profile or updates its wallet address. Known email/name are kept when the update has none.
func (r *PGProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, wallet_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email          = COALESCE(EXCLUDED.email, profiles.email),
			full_name      = COALESCE(EXCLUDED.full_name, profiles.full_name),
			wallet_address = EXCLUDED.wallet_address,
			updated_at     = now()
		RETURNING email, full_name, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Email, p.FullName, p.WalletAddress).
		Scan(&p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *PGProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, email, full_name, wallet_address, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.WalletAddress, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
