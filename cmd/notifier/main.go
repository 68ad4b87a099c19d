package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/catalog_api/internal/config"
	"github.com/Pesokrava/catalog_api/internal/delivery/events"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

// notifier tails review events without consuming them from the work queue
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	logger.SetGlobalLogger(appLogger)

	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	if err := consumer.Subscribe(review.EventsSubject, events.LoggingHandler(appLogger)); err != nil {
		appLogger.Fatal("Failed to subscribe to review events", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Infof("Notifier listening on %s", review.EventsSubject)
	<-ctx.Done()
	appLogger.Info("Notifier stopped")
}
