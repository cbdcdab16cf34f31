package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/plan-catalog/internal/catalog"
	"github.com/Spok95/plan-catalog/internal/config"
	"github.com/Spok95/plan-catalog/internal/domain/plans"
	"github.com/Spok95/plan-catalog/internal/infra/db"
	httpx "github.com/Spok95/plan-catalog/internal/infra/http"
	"github.com/Spok95/plan-catalog/internal/infra/logger"
	"github.com/Spok95/plan-catalog/internal/infra/migrations"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.New("prod", "plan-catalog").Error("config invalid, refusing to start", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, "plan-catalog")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.MigrateOnStart {
		if err := migrations.Up(ctx, cfg.Postgres.DSN, log); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	log.Info("db connected", "max_conns", cfg.Postgres.MaxConns)

	svc := catalog.NewService(plans.NewRepo(pool), log, catalog.Options{
		Deployment:   "server",
		QueryTimeout: cfg.Postgres.QueryTimeout,
		Metrics:      catalog.NewMetrics(prometheus.DefaultRegisterer),
	})

	srv := httpx.New(cfg.Addr(), cfg.Metrics.Enabled, log, svc, pool)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.Addr())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
