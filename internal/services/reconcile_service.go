package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paywallet/bank-webhook/internal/metrics"
	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
	"github.com/paywallet/bank-webhook/internal/webhook"
	"github.com/paywallet/bank-webhook/internal/worker"
)

// Reconciliation failure kinds. None of them leaves partial state behind:
// the atomic unit rolls back on any error, so the caller may retry the
// identical notification safely.
var (
	// ErrNotFound: no transaction with this token is currently Processing.
	// Covers unknown tokens and already-settled ones; duplicate deliveries
	// land here instead of re-crediting.
	ErrNotFound = errors.New("transaction not found or not in processing state")
	// ErrAmountMismatch: notification amount differs from the stored amount.
	ErrAmountMismatch = errors.New("amount mismatch between webhook and stored transaction")
	// ErrUserMismatch: notification user differs from the stored owner.
	ErrUserMismatch = errors.New("user mismatch between webhook and stored transaction")
)

// Outcome reports what a committed reconciliation changed. BalanceUpdated is
// false in the degenerate case where no balance row existed for the user;
// the FK on onramp_transactions.user_id should make that impossible, but it
// is surfaced rather than swallowed.
type Outcome struct {
	TransactionUpdated bool `json:"transactionUpdated"`
	BalanceUpdated     bool `json:"balanceUpdated"`
}

// ReconcileService applies a provider notification to the pending
// transaction it references and credits the balance exactly once. It is the
// sole writer of transaction status and deposit balance mutations.
type ReconcileService struct {
	atomic repo.Atomic
	audit  repo.AuditLogs
	wp     *worker.Pool
}

func NewReconcileService(a repo.Atomic, l repo.AuditLogs, wp *worker.Pool) *ReconcileService {
	return &ReconcileService{atomic: a, audit: l, wp: wp}
}

// Reconcile runs the whole match-validate-credit-settle sequence as one
// database transaction:
//
//  1. find the Processing transaction for the token (row locked; miss
//     means ErrNotFound, which is the idempotency guard)
//  2. stored amount must equal the notified amount (numerically)
//  3. stored owner must equal the notified user
//  4. credit the owner's balance
//  5. mark the transaction Success
//
// Two concurrent deliveries of the same token serialize on the row lock in
// step 1; the loser re-reads post-commit state, misses the Processing
// predicate and fails with ErrNotFound.
func (s *ReconcileService) Reconcile(ctx context.Context, n webhook.Notification) (Outcome, error) {
	var out Outcome
	err := s.atomic.WithTx(ctx, func(st repo.ReconcileStores) error {
		txn, err := st.FindProcessingByToken(ctx, n.Token)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find transaction: %w", err)
		}
		if !txn.Amount.Equal(n.Amount) {
			return ErrAmountMismatch
		}
		if txn.UserID != n.UserID {
			return ErrUserMismatch
		}

		rows, err := st.IncrementBalance(ctx, txn.UserID, n.Amount)
		if err != nil {
			return fmt.Errorf("increment balance: %w", err)
		}
		if _, err := st.MarkSuccess(ctx, n.Token); err != nil {
			return fmt.Errorf("mark success: %w", err)
		}

		out = Outcome{TransactionUpdated: true, BalanceUpdated: rows > 0}
		return nil
	})

	result := resultLabel(err)
	metrics.ReconciliationsTotal.WithLabelValues(result).Inc()
	s.recordAudit(n.Token, result, err)

	if err != nil {
		return Outcome{}, err
	}
	if !out.BalanceUpdated {
		slog.Warn("transaction settled but no balance row was credited", "token", n.Token, "user_id", n.UserID)
	}
	return out, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, ErrUserMismatch):
		return "user_mismatch"
	default:
		return "error"
	}
}

// recordAudit writes the outcome asynchronously; the audit trail is the
// operator-visible record of rejected deliveries, since rejected rows stay
// in Processing with no terminal failure status.
func (s *ReconcileService) recordAudit(token, result string, err error) {
	if s.audit == nil || s.wp == nil {
		return
	}
	details := map[string]any{"result": result}
	if err != nil {
		details["reason"] = err.Error()
	}
	entityID := token
	s.wp.Submit(func() {
		l := models.AuditLog{
			EntityType: "onramp_transaction",
			EntityID:   &entityID,
			Action:     "reconcile",
			Details:    details,
		}
		if aerr := s.audit.Create(context.Background(), l); aerr != nil {
			slog.Error("audit log write", "err", aerr, "token", token)
		}
	})
}
