package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/catalog_api/internal/config"
	"github.com/Pesokrava/catalog_api/internal/delivery/events"
	"github.com/Pesokrava/catalog_api/internal/pkg/cache"
	"github.com/Pesokrava/catalog_api/internal/pkg/database"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/catalog_api/internal/repository/cache"
	"github.com/Pesokrava/catalog_api/internal/repository/postgres"
	"github.com/Pesokrava/catalog_api/internal/usecase/rating"
	"github.com/Pesokrava/catalog_api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting rating worker...")

	db, err := database.WaitForDB(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	redisClient, err := cache.WaitForRedis(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ProductTTL, cfg.Cache.ReviewsListTTL)
	aggregator := rating.NewAggregator(postgres.NewStore(db), redisCache, appLogger)
	ratingWorker := worker.NewRatingWorker(aggregator, worker.DefaultOptions(cfg.Rating.DebounceWindow), appLogger)

	nc, err := events.Connect(cfg.NATS.URL, "rating-worker", appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		appLogger.Fatal("Failed to create JetStream context", err)
	}

	consumer, err := events.NewPullConsumer(js, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to subscribe to review events", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, ratingWorker.HandleEvent)
	}()

	appLogger.WithFields(map[string]interface{}{
		"debounce": cfg.Rating.DebounceWindow.String(),
	}).Info("Rating worker started")

	<-ctx.Done()
	appLogger.Info("Received shutdown signal")
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := ratingWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Rating worker stopped")
}
