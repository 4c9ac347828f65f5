package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
)

type balancesRepo struct{ pool *pgxpool.Pool }

func (r *balancesRepo) GetOrCreate(ctx context.Context, userID int64) (models.Balance, error) {
	if b, err := r.Get(ctx, userID); err == nil {
		return b, nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO balances(user_id, amount, last_updated_at)
		 VALUES($1, 0, now())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return models.Balance{}, repo.ErrNotFound
	}
	if err != nil {
		return models.Balance{}, err
	}
	return r.Get(ctx, userID)
}

func (r *balancesRepo) Get(ctx context.Context, userID int64) (models.Balance, error) {
	var b models.Balance
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, amount, last_updated_at
		   FROM balances
		  WHERE user_id=$1`,
		userID,
	).Scan(&b.UserID, &b.Amount, &b.LastUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, err
}
