package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
	"github.com/paywallet/bank-webhook/internal/worker"
)

type fakeOnRamps struct {
	created []models.OnRampTransaction
}

func (f *fakeOnRamps) Create(ctx context.Context, t models.OnRampTransaction) (models.OnRampTransaction, error) {
	t.ID = "22222222-2222-2222-2222-222222222222"
	f.created = append(f.created, t)
	return t, nil
}

func (f *fakeOnRamps) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.OnRampTransaction, error) {
	var out []models.OnRampTransaction
	for _, t := range f.created {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeBalances struct {
	rows map[int64]models.Balance
}

func (f *fakeBalances) GetOrCreate(ctx context.Context, userID int64) (models.Balance, error) {
	if b, ok := f.rows[userID]; ok {
		return b, nil
	}
	b := models.Balance{UserID: userID, Amount: decimal.Zero}
	f.rows[userID] = b
	return b, nil
}

func (f *fakeBalances) Get(ctx context.Context, userID int64) (models.Balance, error) {
	b, ok := f.rows[userID]
	if !ok {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, nil
}

func TestStartCreatesProcessingRowWithToken(t *testing.T) {
	onr := &fakeOnRamps{}
	bal := &fakeBalances{rows: map[int64]models.Balance{}}
	svc := NewOnRampService(onr, bal)

	txn, err := svc.Start(context.Background(), 5, "", dec("200"))
	require.NoError(t, err)
	assert.Equal(t, models.OnRampProcessing, txn.Status)
	assert.Equal(t, "HDFC Bank", txn.Provider)
	assert.NotEmpty(t, txn.Token)
	assert.Contains(t, bal.rows, int64(5), "balance row must exist before the webhook arrives")
}

func TestStartRejectsBadAmounts(t *testing.T) {
	svc := NewOnRampService(&fakeOnRamps{}, &fakeBalances{rows: map[int64]models.Balance{}})

	for _, amount := range []string{"0", "-5", "10000001"} {
		_, err := svc.Start(context.Background(), 5, "HDFC Bank", dec(amount))
		assert.Error(t, err, "amount %s", amount)
	}
}

type fakeAuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (f *fakeAuditLogs) Create(ctx context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

func TestReconcileRecordsAuditTrail(t *testing.T) {
	f := newFakeAtomic()
	seed(f, "T1", 5, "200", "1000")
	audit := &fakeAuditLogs{}
	wp := worker.NewPool(1)
	svc := NewReconcileService(f, audit, wp)

	_, err := svc.Reconcile(context.Background(), notif("T1", "5", "200"))
	require.NoError(t, err)
	_, err = svc.Reconcile(context.Background(), notif("T1", "5", "200"))
	require.ErrorIs(t, err, ErrNotFound)
	wp.Stop()

	require.Len(t, audit.logs, 2)
	assert.Equal(t, "reconcile", audit.logs[0].Action)
	assert.Equal(t, "success", audit.logs[0].Details["result"])
	assert.Equal(t, "not_found", audit.logs[1].Details["result"])
	require.NotNil(t, audit.logs[1].EntityID)
	assert.Equal(t, "T1", *audit.logs[1].EntityID)
}
