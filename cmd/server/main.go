package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerport/order-admission/internal/api"
	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
	"github.com/ledgerport/order-admission/internal/core/service"
	"github.com/ledgerport/order-admission/internal/infrastructure/config"
	mongodb "github.com/ledgerport/order-admission/internal/infrastructure/db/mongo"
	redisdb "github.com/ledgerport/order-admission/internal/infrastructure/db/redis"
	"github.com/ledgerport/order-admission/internal/infrastructure/lock"
	"github.com/ledgerport/order-admission/pkg/logger"
)

func main() {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Core services ---
	clientRepo := mongodb.NewClientRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)
	locker := lock.NewManager()
	dedup := redisdb.NewDupChecker(rdb)

	var delay ports.DelayStrategy = ports.NoDelay{}
	if cfg.Admission.DelayEnabled {
		delay = ports.RandomDelay{Min: cfg.Admission.DelayMin, Max: cfg.Admission.DelayMax}
	}

	clientService := service.NewClientService(clientRepo, orderRepo, logger.With("clients"))
	orderService := service.NewOrderService(
		clientRepo, orderRepo, locker, delay, dedup,
		domain.Cents(cfg.Admission.FloorCents), logger.With("admission"),
	)
	scenarioService := service.NewScenarioService(clientService, orderService, logger.With("scenarios"))

	// --- HTTP ---
	e := api.NewRouter(db, rdb, clientService, orderService, scenarioService, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	// Block until interrupted, then drain in-flight requests. Admissions are
	// not cancellable mid-protocol; the shutdown grace period covers the
	// longest configured processing window.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	grace := 15 * time.Second
	if cfg.Admission.DelayEnabled && cfg.Admission.DelayMax > grace {
		grace = cfg.Admission.DelayMax + 5*time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
