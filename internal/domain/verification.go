package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const VerificationStatusVerified = "verified"

// Verification is the result of checking one uploaded electricity bill.
type Verification struct {
	ID               uuid.UUID       `json:"id"`
	UserID           string          `json:"user_id"`
	ConsumptionKWh   decimal.Decimal `json:"consumption_kwh"`
	ExportedKWh      decimal.Decimal `json:"exported_kwh"`
	CreditsEarned    decimal.Decimal `json:"credits_earned"`
	ConfidenceScore  decimal.Decimal `json:"confidence_score"`
	VerificationHash string          `json:"verification_hash"`
	BillFileName     *string         `json:"bill_file_name,omitempty"`
	BillObjectKey    *string         `json:"bill_object_key,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

type VerificationStats struct {
	Count             int             `json:"count"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
	TotalExportedKWh  decimal.Decimal `json:"total_exported_kwh"`
	AverageConfidence decimal.Decimal `json:"average_confidence"`
}
