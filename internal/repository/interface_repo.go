// internal/repository/interface_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"solarcredits-service/internal/domain"
)

type VerificationRepository interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Verification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Verification, error)
	Stats(ctx context.Context, userID string) (*domain.VerificationStats, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error)
}

type ListingRepository interface {
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
}

type ProfileRepository interface {
	Upsert(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

type CreditRepository interface {
	Create(ctx context.Context, c *domain.CarbonCredit) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.CarbonCredit, error)
}
