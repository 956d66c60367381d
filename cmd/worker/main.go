package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/plantdoctor/internal/accounts"
	"github.com/geocoder89/plantdoctor/internal/config"
	"github.com/geocoder89/plantdoctor/internal/db"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo/postgres"
	"github.com/geocoder89/plantdoctor/internal/worker"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBURL, 2)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// only the sweep path of the service is used here
	sweeper := accounts.New(
		postgres.NewUsersRepo(pool, nil),
		postgres.NewResetTokensRepo(pool, nil),
		nil, nil,
		accounts.WithLogger(log),
	)

	w := worker.New(worker.Config{
		PollInterval: cfg.SweepInterval(),
		SweepTimeout: 5 * time.Second,
	}, sweeper, log)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           w.HealthHandler(pool),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := healthSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "health_port", cfg.WorkerHealthPort)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker shutdown complete", "stats", w.Stats())
}
