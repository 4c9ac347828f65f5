package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
	"github.com/paywallet/bank-webhook/internal/services"
)

type memStores struct {
	mu       sync.Mutex
	txns     map[string]models.OnRampTransaction
	balances map[int64]decimal.Decimal
}

func (m *memStores) WithTx(ctx context.Context, fn func(repo.ReconcileStores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memStores) FindProcessingByToken(ctx context.Context, token string) (models.OnRampTransaction, error) {
	txn, ok := m.txns[token]
	if !ok || txn.Status != models.OnRampProcessing {
		return models.OnRampTransaction{}, repo.ErrNotFound
	}
	return txn, nil
}

func (m *memStores) IncrementBalance(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	cur, ok := m.balances[userID]
	if !ok {
		return 0, nil
	}
	m.balances[userID] = cur.Add(amount)
	return 1, nil
}

func (m *memStores) MarkSuccess(ctx context.Context, token string) (models.OnRampTransaction, error) {
	txn := m.txns[token]
	txn.Status = models.OnRampSuccess
	m.txns[token] = txn
	return txn, nil
}

func newHandler(t *testing.T) (*WebhookHandler, *memStores) {
	t.Helper()
	st := &memStores{
		txns: map[string]models.OnRampTransaction{
			"T1": {
				Token:    "T1",
				Provider: "HDFC Bank",
				UserID:   5,
				Amount:   decimal.NewFromInt(200),
				Status:   models.OnRampProcessing,
			},
		},
		balances: map[int64]decimal.Decimal{5: decimal.NewFromInt(1000)},
	}
	return NewWebhookHandler(services.NewReconcileService(st, nil, nil)), st
}

func post(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hdfcWebhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Capture(rec, req)
	return rec
}

func TestCaptureSuccess(t *testing.T) {
	h, st := newHandler(t)

	rec := post(h, `{"token":"T1","user_identifier":"5","amount":"200"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message            string `json:"message"`
		TransactionUpdated bool   `json:"transactionUpdated"`
		BalanceUpdated     bool   `json:"balanceUpdated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Captured successfully", resp.Message)
	assert.True(t, resp.TransactionUpdated)
	assert.True(t, resp.BalanceUpdated)
	assert.True(t, st.balances[5].Equal(decimal.NewFromInt(1200)))
}

func TestCaptureValidationFailure(t *testing.T) {
	h, _ := newHandler(t)

	rec := post(h, `{"token":"T1","user_identifier":"abc","amount":"0"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid request data", resp.Message)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "user_identifier", resp.Errors[0].Field)
	assert.Equal(t, "amount", resp.Errors[1].Field)
}

func TestCaptureMalformedJSON(t *testing.T) {
	h, _ := newHandler(t)

	rec := post(h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request data")
}

func TestCaptureValidationRunsBeforeEngine(t *testing.T) {
	h, st := newHandler(t)

	// valid token for a real row, but out-of-range amount: must be stopped
	// at the validator, leaving the row untouched
	rec := post(h, `{"token":"T1","user_identifier":"5","amount":"10000001"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.OnRampProcessing, st.txns["T1"].Status)
	assert.True(t, st.balances[5].Equal(decimal.NewFromInt(1000)))
}

func TestCaptureFailuresAreOpaque(t *testing.T) {
	h, st := newHandler(t)

	for name, body := range map[string]string{
		"unknown token":   `{"token":"nope","user_identifier":"5","amount":"200"}`,
		"amount mismatch": `{"token":"T1","user_identifier":"5","amount":"250"}`,
		"user mismatch":   `{"token":"T1","user_identifier":"6","amount":"200"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := post(h, body)
			assert.Equal(t, 411, rec.Code)
			assert.JSONEq(t, `{"message":"Error while processing webhook"}`, rec.Body.String())
		})
	}
	assert.True(t, st.balances[5].Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, models.OnRampProcessing, st.txns["T1"].Status)
}

func TestCaptureDuplicateDelivery(t *testing.T) {
	h, st := newHandler(t)

	body := `{"token":"T1","user_identifier":"5","amount":"200"}`
	rec := post(h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(h, body)
	assert.Equal(t, 411, rec.Code)
	assert.True(t, st.balances[5].Equal(decimal.NewFromInt(1200)), "second delivery must not re-credit")
}
