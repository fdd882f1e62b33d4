// internal/repository/listing_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarcredits-service/internal/domain"
	xerrors "solarcredits-service/shared/utils/errors"
)

type PGListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *PGListingRepository {
	return &PGListingRepository{pool: pool}
}

const listingColumns = `
	id, seller_id, producer_name, producer_address, location, credits_available,
	price_per_credit, rating, verified, solar_capacity, status, created_at`

var listingOrder = map[domain.ListingSort]string{
	domain.SortByPrice:   "price_per_credit ASC",
	domain.SortByRating:  "rating DESC",
	domain.SortByCredits: "credits_available DESC",
}

// List returns active listings matching the producer/location search
func (r *PGListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + listingColumns + ` FROM marketplace_listings WHERE status = 'active'`)

	var args []interface{}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, containsPattern(q))
		sb.WriteString(` AND (producer_name ILIKE $1 ESCAPE '\' OR location ILIKE $1 ESCAPE '\')`)
	}

	order, ok := listingOrder[filter.Sort]
	if !ok {
		order = "created_at ASC"
	}
	sb.WriteString(` ORDER BY ` + order + `, id`)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list marketplace listings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PGListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM marketplace_listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches q literally anywhere in the column.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.ProducerName,
		&l.ProducerAddress,
		&l.Location,
		&l.CreditsAvailable,
		&l.PricePerCredit,
		&l.Rating,
		&l.Verified,
		&l.SolarCapacity,
		&l.Status,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
