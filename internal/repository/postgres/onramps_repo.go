package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
)

type onRampsRepo struct{ pool *pgxpool.Pool }

func (r *onRampsRepo) Create(ctx context.Context, t models.OnRampTransaction) (models.OnRampTransaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO onramp_transactions (id, token, provider, user_id, amount, status)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, token, provider, user_id, amount, status, started_at`,
		t.ID, t.Token, t.Provider, t.UserID, t.Amount, t.Status,
	).Scan(&t.ID, &t.Token, &t.Provider, &t.UserID, &t.Amount, &t.Status, &t.StartedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return models.OnRampTransaction{}, repo.ErrNotFound
	}
	if err != nil {
		return models.OnRampTransaction{}, err
	}
	return t, nil
}

func (r *onRampsRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.OnRampTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, token, provider, user_id, amount, status, started_at
		   FROM onramp_transactions
		  WHERE user_id=$1
		  ORDER BY started_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OnRampTransaction
	for rows.Next() {
		var t models.OnRampTransaction
		if err := rows.Scan(&t.ID, &t.Token, &t.Provider, &t.UserID, &t.Amount, &t.Status, &t.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
