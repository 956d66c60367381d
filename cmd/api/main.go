package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/plantdoctor/internal/accounts"
	"github.com/geocoder89/plantdoctor/internal/auth"
	"github.com/geocoder89/plantdoctor/internal/cache"
	"github.com/geocoder89/plantdoctor/internal/config"
	"github.com/geocoder89/plantdoctor/internal/db"
	"github.com/geocoder89/plantdoctor/internal/diseases"
	httpx "github.com/geocoder89/plantdoctor/internal/http"
	"github.com/geocoder89/plantdoctor/internal/http/handlers"
	"github.com/geocoder89/plantdoctor/internal/notifications"
	"github.com/geocoder89/plantdoctor/internal/observability"
	"github.com/geocoder89/plantdoctor/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		ServiceName: "plantdoctor-api",
		Endpoint:    cfg.OTelEndpoint,
		Env:         cfg.Env,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(startCtx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	if err := db.Migrate(startCtx, pool, db.Up); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	users := postgres.NewUsersRepo(pool, prom)
	resetTokens := postgres.NewResetTokensRepo(pool, prom)
	cultures := postgres.NewCulturesRepo(pool, prom)
	plantings := postgres.NewPlantingsRepo(pool, prom)

	if created, err := db.EnsureAdminUser(startCtx, users, cfg); err != nil {
		log.Error("ensure admin failed", "err", err)
		os.Exit(1)
	} else if created {
		log.Info("admin user ready", "email", cfg.AdminEmail)
	}

	health := map[string]handlers.Pinger{"db": pool}

	var catalogCache cache.Store = cache.NewMemory(30 * time.Second)
	var redisCache *cache.Redis
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      5 * time.Minute,
		}, log)
		catalogCache = redisCache
		health["redis"] = redisCache
	}

	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		log.Error("notifier init failed", "err", err)
		os.Exit(1)
	}
	dispatcher := notifications.NewDispatcher(notifier, cfg.NotifyTimeout(), log, prom)

	jwt := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	accountSvc := accounts.New(users, resetTokens, jwt, dispatcher,
		accounts.WithResetTTL(cfg.ResetTokenTTL()),
		accounts.WithResetURLBase(cfg.ResetURLBase),
		accounts.WithLogger(log),
		accounts.WithProm(prom),
	)

	// set up routers
	router := httpx.NewRouter(httpx.Deps{
		Config:    cfg,
		Log:       log,
		Prom:      prom,
		Gatherer:  reg,
		Tokens:    jwt,
		Accounts:  accountSvc,
		Users:     users,
		Cultures:  cultures,
		Plantings: plantings,
		Posts:     postgres.NewPostsRepo(pool, prom),
		Diagnoses: postgres.NewDiagnosesRepo(pool, prom),
		Diseases:  diseases.Default(),
		Cache:     catalogCache,
		Health:    health,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		// in-flight emails get whatever is left of the budget
		if err := dispatcher.Wait(ctx); err != nil {
			log.Warn("notifications still pending at shutdown", "err", err)
		}

		if redisCache != nil {
			_ = redisCache.Close()
		}
		pool.Close()

		if err := shutdownTracer(ctx); err != nil {
			log.Warn("tracer flush failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func buildNotifier(cfg config.Config, log *slog.Logger) (notifications.Notifier, error) {
	var inner notifications.Notifier = notifications.NewLogNotifier(log)

	if cfg.SMTPEnabled() {
		smtp, err := notifications.NewSMTPNotifier(notifications.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			TLS:      cfg.SMTPTLS,
		})
		if err != nil {
			return nil, err
		}
		inner = smtp
	}

	return notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          cfg.NotifyTimeout(),
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		HalfOpenMaxCalls: 1,
	}), nil
}
