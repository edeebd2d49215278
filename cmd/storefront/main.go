package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmehra2102/doglivery/internal/config"
	"github.com/dmehra2102/doglivery/pkg/database"
	"github.com/dmehra2102/doglivery/pkg/idempotency"
	"github.com/dmehra2102/doglivery/pkg/logging"
	"github.com/dmehra2102/doglivery/pkg/outbox"
	"github.com/dmehra2102/doglivery/pkg/shutdown"
	"github.com/dmehra2102/doglivery/pkg/tracing"

	authapp "github.com/dmehra2102/doglivery/internal/auth/application"
	authhttp "github.com/dmehra2102/doglivery/internal/auth/infrastructure/http"
	authpg "github.com/dmehra2102/doglivery/internal/auth/infrastructure/postgres"
	authredis "github.com/dmehra2102/doglivery/internal/auth/infrastructure/redis"
	cartapp "github.com/dmehra2102/doglivery/internal/cart/application"
	carthttp "github.com/dmehra2102/doglivery/internal/cart/infrastructure/http"
	cartredis "github.com/dmehra2102/doglivery/internal/cart/infrastructure/redis"
	catalogapp "github.com/dmehra2102/doglivery/internal/catalog/application"
	cataloggrpc "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/grpc"
	cataloghttp "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/http"
	catalogpg "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/postgres"
	catalogredis "github.com/dmehra2102/doglivery/internal/catalog/infrastructure/redis"
	orderapp "github.com/dmehra2102/doglivery/internal/order/application"
	orderhttp "github.com/dmehra2102/doglivery/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/doglivery/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/doglivery/internal/order/infrastructure/postgres"
	paymentapp "github.com/dmehra2102/doglivery/internal/payment/application"
	paymenthttp "github.com/dmehra2102/doglivery/internal/payment/infrastructure/http"
	paymentpg "github.com/dmehra2102/doglivery/internal/payment/infrastructure/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "storefront", cfg.OTLPEndpoint, log)
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

	// Outbox relay for order events
	writer := orderkafka.NewWriter([]string{cfg.KafkaAddr})
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, cfg.OrderTopic)
	relay := outbox.NewRelay(log, outbox.NewPostgresStore(pool), dispatch, "storefront-relay")
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	catalog := catalogapp.NewService(log, catalogpg.NewRepository(log, pool),
		catalogredis.NewStoreCache(rdb, cfg.StoreCacheTTL), cfg.DefaultDeliveryFee)

	// Stock checks go to catalog-service when configured, in-process otherwise.
	var stock orderapp.StockChecker = catalog
	if cfg.CatalogAddr != "" {
		client, err := cataloggrpc.NewStockClient(log, cfg.CatalogAddr)
		if err != nil {
			log.Error("catalog grpc dial failed", "err", err)
			os.Exit(1)
		}
		defer client.Close()
		stock = client
	}

	orders := orderapp.NewService(log, orderpg.NewRepository(log, pool), catalog, stock)
	carts := cartapp.NewService(log, cartredis.NewStore(rdb, cfg.CartTTL), catalog, orders)
	pix := paymentapp.NewService(log, paymentpg.NewRepository(log, pool), orders, catalog, cfg.PixMerchantCity)
	auth := authapp.NewService(log, authpg.NewRepository(log, pool), authredis.NewRevocations(rdb),
		[]byte(cfg.JWTSecret), cfg.TokenTTL)

	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	guard := authhttp.NewGuard(log, auth)
	orderHandler := orderhttp.NewHandler(log, orders)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, logging.Middleware(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cataloghttp.NewHandler(log, catalog).RegisterRoutes(r)
	orderHandler.RegisterRoutes(r, idem.Middleware)
	carthttp.NewHandler(log, carts).RegisterRoutes(r, idem.Middleware)
	paymenthttp.NewHandler(log, pix).RegisterRoutes(r)
	authhttp.NewHandler(log, auth).RegisterRoutes(r, guard)
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAdmin)
		orderHandler.RegisterAdminRoutes(r)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	if err := shutdown.HTTPServer(srv, 10*time.Second); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("storefront shutdown complete")
}
