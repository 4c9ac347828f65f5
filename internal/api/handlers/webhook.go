package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/paywallet/bank-webhook/internal/api/httpx"
	"github.com/paywallet/bank-webhook/internal/api/validate"
	"github.com/paywallet/bank-webhook/internal/metrics"
	"github.com/paywallet/bank-webhook/internal/middleware"
	"github.com/paywallet/bank-webhook/internal/services"
	"github.com/paywallet/bank-webhook/internal/webhook"
)

// statusProcessingFailed is what the provider's contract expects on any
// reconciliation failure. 411 is odd but callers match on it.
const statusProcessingFailed = 411

type WebhookHandler struct {
	svc *services.ReconcileService
}

func NewWebhookHandler(svc *services.ReconcileService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

type webhookResponse struct {
	Message string `json:"message"`
	services.Outcome
}

type webhookValidationResponse struct {
	Message string        `json:"message"`
	Errors  validate.Errs `json:"errors"`
}

type webhookFailureResponse struct {
	Message string `json:"message"`
}

// Capture handles POST /hdfcWebhook. Failure detail is logged for
// operators but never returned: the caller is untrusted, so every
// reconciliation failure collapses into one opaque response.
func (h *WebhookHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var raw webhook.RawNotification
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		metrics.WebhookRejectedTotal.Inc()
		httpx.WriteJSON(w, http.StatusBadRequest, webhookValidationResponse{
			Message: "Invalid request data",
			Errors:  validate.Errs{{Field: "body", Message: "malformed JSON"}},
		})
		return
	}

	n, errs := webhook.Parse(raw)
	if errs != nil {
		metrics.WebhookRejectedTotal.Inc()
		httpx.WriteJSON(w, http.StatusBadRequest, webhookValidationResponse{
			Message: "Invalid request data",
			Errors:  errs,
		})
		return
	}

	out, err := h.svc.Reconcile(r.Context(), n)
	if err != nil {
		slog.Info("webhook rejected",
			"err", err,
			"token", n.Token,
			"request_id", middleware.RequestIDFrom(r.Context()),
		)
		httpx.WriteJSON(w, statusProcessingFailed, webhookFailureResponse{
			Message: "Error while processing webhook",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, webhookResponse{
		Message: "Captured successfully",
		Outcome: out,
	})
}
