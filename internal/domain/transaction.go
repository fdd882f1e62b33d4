package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionSale     TransactionType = "sale"
	TransactionMint     TransactionType = "mint"
	TransactionRetire   TransactionType = "retire"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionMint, TransactionRetire:
		return true
	}
	return false
}

// Transaction is an append-only record of a user's credit activity.
type Transaction struct {
	ID          uuid.UUID        `json:"id"`
	UserID      string           `json:"user_id"`
	Type        TransactionType  `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	TxHash      *string          `json:"tx_hash"`
	FromAddress *string          `json:"from_address"`
	ToAddress   *string          `json:"to_address"`
	PriceINR    *decimal.Decimal `json:"price_inr"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TransactionEvent is published whenever a transaction row is inserted.
type TransactionEvent struct {
	EventType   string       `json:"event_type"` // transaction.created
	UserID      string       `json:"user_id"`
	Transaction *Transaction `json:"transaction"`
	Timestamp   time.Time    `json:"timestamp"`
}

const EventTransactionCreated = "transaction.created"
