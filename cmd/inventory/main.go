package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"

	_ "github.com/tair/stock-keeper/docs"
	"github.com/tair/stock-keeper/internal/inventory"
	httpDelivery "github.com/tair/stock-keeper/internal/inventory/delivery/http"
	"github.com/tair/stock-keeper/internal/inventory/delivery/ws"
	"github.com/tair/stock-keeper/internal/inventory/domain"
	"github.com/tair/stock-keeper/internal/inventory/repository"
	"github.com/tair/stock-keeper/internal/inventory/usecase/command"
	"github.com/tair/stock-keeper/kafka"
	"github.com/tair/stock-keeper/pkg/config"
	"github.com/tair/stock-keeper/pkg/database"
	"github.com/tair/stock-keeper/pkg/keylock"
	"github.com/tair/stock-keeper/pkg/logger"
	"github.com/tair/stock-keeper/pkg/tracing"
)

var changeEventTypes = []string{
	domain.EventItemCreated,
	domain.EventItemRemoved,
	domain.EventItemQuantityUpdated,
	domain.EventItemPurchased,
	domain.EventItemReturned,
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Init("inventory-service", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.Service.Name, cfg.Service.IsDevelopment())
	logger.SetLevel(cfg.Service.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.Service.Name).
		Str("environment", cfg.Service.Environment).
		Str("log_level", cfg.Service.LogLevel).
		Dur("mutation_delay", cfg.Inventory.MutationDelay).
		Msg("Starting inventory service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(cfg.Service.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.Enabled)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Str("driver", cfg.Database.Driver).Msg("Database initialized successfully")

	locker, closeLocker, err := newLocker(ctx, cfg.Redis)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize key locker")
	}
	defer closeLocker()

	// Change notifications: straight to the websocket hub, or through Kafka
	// so every replica's subscribers see every change.
	hub := ws.NewHub()
	publishers := []domain.EventPublisher{hub}

	var consumer *kafka.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka publisher")
		}
		defer publisher.Close()
		publishers = []domain.EventPublisher{publisher}

		// One group per process: each replica feeds its own subscribers.
		groupID := cfg.Kafka.GroupID + "-" + uuid.NewString()[:8]
		consumer, err = kafka.NewConsumer(cfg.Kafka.Brokers, groupID, []string{cfg.Kafka.Topic})
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka consumer")
		}
		defer consumer.Close()
		for _, eventType := range changeEventTypes {
			consumer.RegisterHandler(eventType, hub.PublishChange)
		}
	}

	// Initialize handler with Wire DI
	handler, err := inventory.InitializeHTTPHandler(
		db,
		command.Delay(cfg.Inventory.MutationDelay),
		locker,
		publishers,
		prometheus.DefaultRegisterer,
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	middlewareConfig := httpDelivery.DefaultMiddlewareConfig()
	router := mux.NewRouter()
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)
	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, sqlDB)
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/ws/inventory", hub.ServeWS).Methods("GET")
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	g.Go(func() error {
		logger.Logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info().Msg("Shutting down server...")

		// In-flight mutations finish their delay before the server stops.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Logger.Error().Err(err).Msg("Inventory service stopped with error")
		return
	}

	logger.Logger.Info().Msg("Inventory service stopped")
}

// newLocker returns the Redis locker when an address is configured and the
// in-process one otherwise.
func newLocker(ctx context.Context, cfg config.RedisConfig) (keylock.Locker, func(), error) {
	if cfg.Addr == "" {
		logger.Logger.Info().Msg("Using in-process key locker")
		return keylock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	logger.Logger.Info().
		Str("addr", cfg.Addr).
		Dur("lock_ttl", cfg.LockTTL).
		Msg("Using Redis key locker")

	return keylock.NewRedis(client, cfg.LockTTL), func() { client.Close() }, nil
}
