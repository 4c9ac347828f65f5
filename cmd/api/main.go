package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paywallet/bank-webhook/internal/api"
	"github.com/paywallet/bank-webhook/internal/auth"
	"github.com/paywallet/bank-webhook/internal/config"
	"github.com/paywallet/bank-webhook/internal/db"
	"github.com/paywallet/bank-webhook/internal/logger"
	"github.com/paywallet/bank-webhook/internal/metrics"
	"github.com/paywallet/bank-webhook/internal/repository/postgres"
	"github.com/paywallet/bank-webhook/internal/services"
	"github.com/paywallet/bank-webhook/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	userSvc := services.NewUserService(repos.Users, repos.Balances, tm)
	balanceSvc := services.NewBalanceService(repos.Balances)
	onRampSvc := services.NewOnRampService(repos.OnRamps, repos.Balances)
	reconcileSvc := services.NewReconcileService(repos.Atomic, repos.AuditLogs, wp)

	metrics.Init()
	r := api.NewRouter(cfg, tm, userSvc, balanceSvc, onRampSvc, reconcileSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
