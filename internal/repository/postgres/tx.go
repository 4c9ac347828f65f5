package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
)

type atomicRepo struct{ pool *pgxpool.Pool }

// WithTx runs fn against a transactional view of the stores. Read committed
// is enough here: FindProcessingByToken takes a row lock, so a concurrent
// delivery of the same token blocks, re-reads the committed state and no
// longer matches the Processing predicate.
func (r *atomicRepo) WithTx(ctx context.Context, fn func(repo.ReconcileStores) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	if err := fn(&txStores{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txStores struct{ tx pgx.Tx }

func (s *txStores) FindProcessingByToken(ctx context.Context, token string) (models.OnRampTransaction, error) {
	var t models.OnRampTransaction
	err := s.tx.QueryRow(ctx,
		`SELECT id, token, provider, user_id, amount, status, started_at
		   FROM onramp_transactions
		  WHERE token=$1 AND status=$2
		    FOR UPDATE`,
		token, models.OnRampProcessing,
	).Scan(&t.ID, &t.Token, &t.Provider, &t.UserID, &t.Amount, &t.Status, &t.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OnRampTransaction{}, repo.ErrNotFound
	}
	return t, err
}

func (s *txStores) IncrementBalance(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	ct, err := s.tx.Exec(ctx,
		`UPDATE balances
		    SET amount = amount + $2,
		        last_updated_at = now()
		  WHERE user_id = $1`,
		userID, amount,
	)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *txStores) MarkSuccess(ctx context.Context, token string) (models.OnRampTransaction, error) {
	var t models.OnRampTransaction
	err := s.tx.QueryRow(ctx,
		`UPDATE onramp_transactions
		    SET status=$2
		  WHERE token=$1
		  RETURNING id, token, provider, user_id, amount, status, started_at`,
		token, models.OnRampSuccess,
	).Scan(&t.ID, &t.Token, &t.Provider, &t.UserID, &t.Amount, &t.Status, &t.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OnRampTransaction{}, repo.ErrNotFound
	}
	return t, err
}
