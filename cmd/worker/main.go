package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/khetisathi/khetisathi-backend/internal/consumers/orderevents"
	"github.com/khetisathi/khetisathi-backend/internal/directory"
	"github.com/khetisathi/khetisathi-backend/internal/fulfillment"
	"github.com/khetisathi/khetisathi-backend/internal/notifications"
	"github.com/khetisathi/khetisathi-backend/internal/pricing"
	"github.com/khetisathi/khetisathi-backend/pkg/config"
	"github.com/khetisathi/khetisathi-backend/pkg/db"
	"github.com/khetisathi/khetisathi-backend/pkg/logger"
	"github.com/khetisathi/khetisathi-backend/pkg/migrate"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox"
	"github.com/khetisathi/khetisathi-backend/pkg/outbox/idempotency"
	"github.com/khetisathi/khetisathi-backend/pkg/pubsub"
	"github.com/khetisathi/khetisathi-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	manager, err := idempotency.NewManager(redisClient, cfg.Outbox.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	directoryRepo := directory.NewRepository(dbClient.DB())

	fulfillmentService, err := fulfillment.NewService(
		fulfillment.NewRepository(dbClient.DB()),
		directory.NewSnapshotProvider(directoryRepo),
		directoryRepo,
		dbClient,
		outboxService,
		cfg.Fulfillment,
		nil,
		logg,
	)
	requireResource(ctx, logg, "fulfillment service", err)

	trigger := fulfillment.NewTrigger(fulfillmentService, cfg.Fulfillment, logg)

	orderEventsSub := pubsubClient.OrderEventsSubscription()
	if orderEventsSub == nil {
		requireResource(ctx, logg, "order events subscription", errors.New("subscription not configured"))
	}
	orderEventsConsumer, err := orderevents.NewConsumer(trigger, orderEventsSub, manager, logg)
	requireResource(ctx, logg, "order events consumer", err)

	notificationSub := pubsubClient.NotificationSubscription()
	if notificationSub == nil {
		requireResource(ctx, logg, "notification subscription", errors.New("subscription not configured"))
	}
	pricingService, err := pricing.NewService(pricing.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "pricing service", err)

	notificationConsumer, err := notifications.NewConsumer(
		notifications.NewRepository(dbClient.DB()),
		notifications.NewLogSender(logg),
		pricingService,
		notificationSub,
		manager,
		logg,
	)
	requireResource(ctx, logg, "notification consumer", err)

	service, err := NewService(ServiceParams{
		Config:               cfg,
		Logger:               logg,
		DB:                   dbClient,
		Redis:                redisClient,
		PubSub:               pubsubClient,
		OrderEventsConsumer:  orderEventsConsumer,
		NotificationConsumer: notificationConsumer,
	})
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "worker failed", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
