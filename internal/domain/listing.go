package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is a producer's offer of credits on the marketplace.
type Listing struct {
	ID               uuid.UUID       `json:"id"`
	SellerID         *string         `json:"seller_id,omitempty"`
	ProducerName     string          `json:"producer"`
	ProducerAddress  string          `json:"producer_address"`
	Location         string          `json:"location"`
	CreditsAvailable decimal.Decimal `json:"credits"`
	PricePerCredit   decimal.Decimal `json:"price_per_credit"` // ETH per SRC
	Rating           decimal.Decimal `json:"rating"`
	Verified         bool            `json:"verified"`
	SolarCapacity    string          `json:"solar_capacity"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ListingSort string

const (
	SortByPrice   ListingSort = "price"
	SortByRating  ListingSort = "rating"
	SortByCredits ListingSort = "credits"
)

type ListingFilter struct {
	Search string
	Sort   ListingSort
}
