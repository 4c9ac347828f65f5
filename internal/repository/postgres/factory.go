package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/paywallet/bank-webhook/internal/repository"
)

type Repositories struct {
	Users     repo.Users
	Balances  repo.Balances
	OnRamps   repo.OnRamps
	AuditLogs repo.AuditLogs
	Atomic    repo.Atomic
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Balances:  &balancesRepo{pool},
		OnRamps:   &onRampsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
		Atomic:    &atomicRepo{pool},
	}
}
