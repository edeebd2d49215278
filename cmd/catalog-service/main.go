package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/doglivery/internal/catalog/application"
	cataloggrpc "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/grpc"
	catalogpg "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/postgres"
	catalogredis "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/redis"
	"github.com/dmehra2102/doglivery/internal/config"
	"github.com/dmehra2102/doglivery/pkg/database"
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

	tp, err := tracing.Init(ctx, "catalog-service", cfg.OTLPEndpoint, log)
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

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	svc := application.NewService(log, catalogpg.NewRepository(log, pool),
		catalogredis.NewStoreCache(rdb, cfg.StoreCacheTTL), cfg.DefaultDeliveryFee)

	gs, err := cataloggrpc.Run(cfg.GRPCAddr, cataloggrpc.NewServer(log, svc))
	if err != nil {
		log.Error("grpc listen failed", "err", err)
		os.Exit(1)
	}
	log.Info("grpc listening", "addr", cfg.GRPCAddr)

	<-ctx.Done()
	gs.GracefulStop()
	log.Info("catalog-service shutdown complete")
}
