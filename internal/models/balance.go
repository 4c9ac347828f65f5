package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the per-user wallet balance. For deposit flows it is mutated
// only by the reconciliation engine's increment, inside its transaction.
type Balance struct {
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
}
