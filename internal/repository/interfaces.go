package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/paywallet/bank-webhook/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned on a duplicate user email.
	ErrEmailTaken = errors.New("email already registered")
)

type Users interface {
	Create(ctx context.Context, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type Balances interface {
	GetOrCreate(ctx context.Context, userID int64) (models.Balance, error)
	Get(ctx context.Context, userID int64) (models.Balance, error)
}

type OnRamps interface {
	Create(ctx context.Context, t models.OnRampTransaction) (models.OnRampTransaction, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.OnRampTransaction, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// ReconcileStores is the view of the two stores visible inside one atomic
// unit. Its methods are only meaningful between WithTx's begin and commit.
type ReconcileStores interface {
	// FindProcessingByToken returns the pending transaction for token, row
	// locked, or ErrNotFound if no row is currently in Processing status.
	FindProcessingByToken(ctx context.Context, token string) (models.OnRampTransaction, error)
	// IncrementBalance adds amount to the user's balance and reports how
	// many balance rows were touched.
	IncrementBalance(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	// MarkSuccess flips the transaction's status to Success.
	MarkSuccess(ctx context.Context, token string) (models.OnRampTransaction, error)
}

// Atomic runs fn inside a single database transaction: every store call in
// fn commits together or not at all.
type Atomic interface {
	WithTx(ctx context.Context, fn func(ReconcileStores) error) error
}
