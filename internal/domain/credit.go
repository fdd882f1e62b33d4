package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditStatus string

const (
	CreditMinted  CreditStatus = "minted"
	CreditRetired CreditStatus = "retired"
)

type CarbonCredit struct {
	ID             uuid.UUID       `json:"id"`
	UserID         string          `json:"user_id"`
	VerificationID *uuid.UUID      `json:"verification_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Status         CreditStatus    `json:"status"`
	TxHash         *string         `json:"tx_hash,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
