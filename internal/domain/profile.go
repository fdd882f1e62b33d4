package domain

import "time"

// Profile is keyed by the authenticated user id.
type Profile struct {
	ID            string    `json:"id"`
	Email         *string   `json:"email,omitempty"`
	FullName      *string   `json:"full_name,omitempty"`
	WalletAddress *string   `json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
