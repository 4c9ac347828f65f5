package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OnRampStatus string

const (
	OnRampProcessing OnRampStatus = "Processing"
	OnRampSuccess    OnRampStatus = "Success"
)

// OnRampTransaction is a deposit request awaiting the provider's webhook.
// Created in Processing; flips to Success exactly once, via reconciliation.
type OnRampTransaction struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	Provider  string          `json:"provider"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    OnRampStatus    `json:"status"`
	StartedAt time.Time       `json:"started_at"`
}
