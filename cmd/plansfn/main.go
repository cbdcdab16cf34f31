// Command plansfn runs the plan catalog as a single-route function: the
// platform routes /functions/v1/plans to this process and scales it to zero.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/plan-catalog/internal/catalog"
	"github.com/Spok95/plan-catalog/internal/config"
	"github.com/Spok95/plan-catalog/internal/domain/plans"
	"github.com/Spok95/plan-catalog/internal/infra/db"
	"github.com/Spok95/plan-catalog/internal/infra/function"
	"github.com/Spok95/plan-catalog/internal/infra/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.New("prod", "plans-function").Error("config invalid, refusing to start", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env, "plans-function")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// a function instance serves few concurrent invocations
	maxConns := min(cfg.Postgres.MaxConns, 2)
	pool, err := db.Connect(ctx, cfg.Postgres.DSN, maxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := catalog.NewService(plans.NewRepo(pool), log, catalog.Options{
		Deployment:   "function",
		QueryTimeout: cfg.Postgres.QueryTimeout,
		Metrics:      catalog.NewMetrics(prometheus.DefaultRegisterer),
	})

	var metrics http.Handler
	if cfg.Metrics.Enabled {
		metrics = promhttp.Handler()
	}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           function.NewMux(log, svc, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("function server error", "err", err)
			stop()
		}
	}()
	log.Info("function ready", "addr", cfg.Addr(), "path", function.Path, "supabase", cfg.Supabase.URL != "")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
