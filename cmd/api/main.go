package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adelferjani/stockparc-backend/api/routes"
	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/internal/inventory"
	"github.com/adelferjani/stockparc-backend/internal/maintenance"
	"github.com/adelferjani/stockparc-backend/internal/movements"
	"github.com/adelferjani/stockparc-backend/internal/vehicles"
	"github.com/adelferjani/stockparc-backend/pkg/auth"
	"github.com/adelferjani/stockparc-backend/pkg/config"
	"github.com/adelferjani/stockparc-backend/pkg/db"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
	"github.com/adelferjani/stockparc-backend/pkg/metrics"
	"github.com/adelferjani/stockparc-backend/pkg/migrate"
	"github.com/adelferjani/stockparc-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	policy := auth.RolePolicy{}

	productRepo := inventory.NewRepository(gormDB)
	ledger := inventory.NewLedger()

	approvalService, err := approvals.NewService(dbClient, approvals.NewRepository(gormDB), policy)
	if err != nil {
		logg.Error(context.Background(), "failed to create approval service", err)
		os.Exit(1)
	}

	movementService, err := movements.NewService(
		dbClient,
		movements.NewRepository(gormDB),
		productRepo,
		ledger,
		approvalService,
		policy,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create movement service", err)
		os.Exit(1)
	}

	vehicleRepo := vehicles.NewRepository(gormDB)
	vehicleService, err := vehicles.NewService(dbClient, vehicleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicle service", err)
		os.Exit(1)
	}

	maintenanceService, err := maintenance.NewService(maintenance.NewRepository(gormDB), vehicleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Idempotency: redisClient,
			Gatherer:    registry,
			HTTPMetrics: httpMetrics,
			Movements:   movementService,
			Approvals:   approvalService,
			Vehicles:    vehicleService,
			Maintenance: maintenanceService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
