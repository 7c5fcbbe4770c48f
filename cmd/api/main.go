package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/khetisathi/khetisathi-backend/api/routes"
	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/internal/fulfillment"
	"github.com/khetisathi/khetisathi-backend/internal/notifications"
	"github.com/khetisathi/khetisathi-backend/internal/pricing"
	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/db"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/metrics"
	"github.com/khetisathi/khetisathi-backend/pkg/migrate"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	directoryRepo := directory.NewRepository(dbClient.DB())

	fulfillmentService, err := fulfillment.NewService(
		fulfillment.NewRepository(dbClient.DB()),
		directory.NewSnapshotProvider(directoryRepo),
		directoryRepo,
		dbClient,
		outboxService,
		cfg.Fulfillment,
		metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	pricingRepo := pricing.NewRepository(dbClient.DB())
	pricingService, err := pricing.NewService(pricingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Fulfillment:   fulfillmentService,
			Directory:     directoryRepo,
			Pricing:       pricingService,
			Rates:         pricingRepo,
			Notifications: notificationsService,
			DLQ:           outbox.NewDLQRepository(dbClient.DB()),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
