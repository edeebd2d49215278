package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/doglivery/internal/config"
	"github.com/dmehra2102/doglivery/internal/notification/application"
	notificationkafka "github.com/dmehra2102/doglivery/internal/notification/infrastructure/kafka"
	notificationpg "github.com/dmehra2102/doglivery/internal/notification/infrastructure/postgres"
	"github.com/dmehra2102/doglivery/pkg/database"
	"github.com/dmehra2102/doglivery/pkg/idempotency"
	"github.com/dmehra2102/doglivery/pkg/logging"
	"github.com/dmehra2102/doglivery/pkg/shutdown"
	"github.com/dmehra2102/doglivery/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "notifier", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := database.Connect(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, log, pool); err != nil {
		log.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	svc := application.NewService(log, notificationpg.NewRepository(log, pool))
	reader := notificationkafka.NewReader([]string{cfg.KafkaAddr}, cfg.OrderTopic, "notifier")
	consumer := notificationkafka.NewConsumer(log, reader, svc, idem)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	<-stopped
	log.Info("notifier shutdown complete")
}
