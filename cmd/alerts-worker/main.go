package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/adelferjani/stockparc-backend/internal/cron"
	"github.com/adelferjani/stockparc-backend/internal/maintenance"
	"github.com/adelferjani/stockparc-backend/internal/vehicles"
	"github.com/adelferjani/stockparc-backend/pkg/config"
	"github.com/adelferjani/stockparc-backend/pkg/db"
	"github.com/adelferjani/stockparc-backend/pkg/instance"
	"github.com/adelferjani/stockparc-backend/pkg/logger"
	"github.com/adelferjani/stockparc-backend/pkg/metrics"
	"github.com/adelferjani/stockparc-backend/pkg/migrate"
	"github.com/adelferjani/stockparc-backend/pkg/redis"
)

const lockKeyFormat = "sp:alerts-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "alerts-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "alerts-worker"

	logg = logger.New(logger.Options{
		ServiceName: "alerts-worker",
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

	vehicleRepo := vehicles.NewRepository(dbClient.DB())
	maintenanceService, err := maintenance.NewService(maintenance.NewRepository(dbClient.DB()), vehicleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance service", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	alertJob, err := cron.NewMaintenanceAlertJob(cron.MaintenanceAlertJobParams{
		Logger:      logg,
		Maintenance: maintenanceService,
		Vehicles:    vehicleRepo,
		Metrics:     metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance alert job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(alertJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Alerts.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting alerts worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "alerts worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "alerts worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
