package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"github.com/paywallet/bank-webhook/internal/api/handlers"
	"github.com/paywallet/bank-webhook/internal/api/httpx"
	"github.com/paywallet/bank-webhook/internal/auth"
	"github.com/paywallet/bank-webhook/internal/config"
	"github.com/paywallet/bank-webhook/internal/metrics"
	"github.com/paywallet/bank-webhook/internal/middleware"
	repo "github.com/paywallet/bank-webhook/internal/repository"
	"github.com/paywallet/bank-webhook/internal/services"
)

func NewRouter(
	cfg config.Config,
	tm *auth.TokenManager,
	us *services.UserService,
	bs *services.BalanceService,
	ors *services.OnRampService,
	rs *services.ReconcileService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	// provider-facing webhook; unauthenticated by contract (signature
	// verification is the provider integration's problem, not ours)
	wh := handlers.NewWebhookHandler(rs)
	r.Post("/hdfcWebhook", wh.Capture)

	am := middleware.NewAuthMiddleware(tm)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
			var req struct{ Email, Password string }
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "bad request", nil)
				return
			}
			u, err := us.Register(r.Context(), req.Email, req.Password)
			if err != nil {
				if errors.Is(err, repo.ErrEmailTaken) {
					httpx.WriteError(w, http.StatusConflict, "email_taken", err.Error(), nil)
					return
				}
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
				return
			}
			httpx.WriteJSON(w, http.StatusCreated, u)
		})

		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var req struct{ Email, Password string }
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "bad request", nil)
				return
			}
			pair, err := us.Login(r.Context(), req.Email, req.Password)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, pair)
		})

		// ---------- wallet (authenticated) ----------
		r.Group(func(r chi.Router) {
			r.Use(am.Auth)

			r.Get("/balances/current", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := middleware.UserID(r.Context())
				if !ok {
					httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no user", nil)
					return
				}
				b, err := bs.Current(r.Context(), uid)
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, b)
			})

			// start a deposit: creates the Processing row the provider's
			// webhook will later settle
			r.Post("/onramp", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := middleware.UserID(r.Context())
				if !ok {
					httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no user", nil)
					return
				}
				var req struct{ Provider, Amount string }
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "bad request", nil)
					return
				}
				amount, err := decimal.NewFromString(req.Amount)
				if err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid amount", nil)
					return
				}
				t, err := ors.Start(r.Context(), uid, req.Provider, amount)
				if err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusCreated, t)
			})

			r.Get("/onramp", func(w http.ResponseWriter, r *http.Request) {
				uid, ok := middleware.UserID(r.Context())
				if !ok {
					httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "no user", nil)
					return
				}
				limit, offset := 50, 0
				if v := r.URL.Query().Get("limit"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n > 0 {
						limit = n
					}
				}
				if v := r.URL.Query().Get("offset"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n >= 0 {
						offset = n
					}
				}
				txs, err := ors.ListByUser(r.Context(), uid, limit, offset)
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, txs)
			})
		})
	})

	return r
}
