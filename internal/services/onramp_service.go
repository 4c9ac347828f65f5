package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
	"github.com/paywallet/bank-webhook/internal/webhook"
)

// OnRampService starts deposit requests. Each request is stored in
// Processing status and waits for the provider's webhook to settle it.
type OnRampService struct {
	onr repo.OnRamps
	bal repo.Balances
}

func NewOnRampService(o repo.OnRamps, b repo.Balances) *OnRampService {
	return &OnRampService{onr: o, bal: b}
}

func (s *OnRampService) Start(ctx context.Context, userID int64, provider string, amount decimal.Decimal) (models.OnRampTransaction, error) {
	if !amount.IsPositive() || amount.GreaterThan(webhook.MaxAmount) {
		return models.OnRampTransaction{}, errors.New("amount must be positive and at most 1 crore")
	}
	if provider == "" {
		provider = "HDFC Bank"
	}
	// Ensure the balance row exists before the webhook can arrive, so the
	// credit in the reconciliation transaction always touches a row.
	if _, err := s.bal.GetOrCreate(ctx, userID); err != nil {
		return models.OnRampTransaction{}, err
	}
	return s.onr.Create(ctx, models.OnRampTransaction{
		Token:    uuid.NewString(),
		Provider: provider,
		UserID:   userID,
		Amount:   amount,
		Status:   models.OnRampProcessing,
	})
}

func (s *OnRampService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.OnRampTransaction, error) {
	return s.onr.ListByUser(ctx, userID, limit, offset)
}
