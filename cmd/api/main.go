package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/catalog_api/internal/config"
	"github.com/Pesokrava/catalog_api/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/catalog_api/internal/delivery/http"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/handler"
	"github.com/Pesokrava/catalog_api/internal/pkg/auth"
	"github.com/Pesokrava/catalog_api/internal/pkg/cache"
	"github.com/Pesokrava/catalog_api/internal/pkg/database"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/catalog_api/internal/repository/cache"
	"github.com/Pesokrava/catalog_api/internal/repository/postgres"
	"github.com/Pesokrava/catalog_api/internal/usecase/category"
	"github.com/Pesokrava/catalog_api/internal/usecase/product"
	"github.com/Pesokrava/catalog_api/internal/usecase/rating"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
	"github.com/Pesokrava/catalog_api/internal/usecase/user"

	_ "github.com/Pesokrava/catalog_api/docs"
)

// @title Catalog API
// @version 1.0
// @description Product catalog with categories, buyer reviews and role-based access.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Catalog API...")

	db, err := database.WaitForDB(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
			appLogger.Fatal("Failed to apply migrations", err)
		}
		appLogger.Infof("Applied migrations from %s", cfg.Database.MigrationsDir)
	}

	redisClient, err := cache.WaitForRedis(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis")

	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	store := postgres.NewStore(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ProductTTL, cfg.Cache.ReviewsListTTL)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	aggregator := rating.NewAggregator(store, redisCache, appLogger)

	productService := product.NewService(store, redisCache, appLogger)
	reviewService := review.NewService(store, aggregator, redisCache, publisher, appLogger)
	categoryService := category.NewService(store, appLogger)
	userService := user.NewService(store, jwtManager, auth.DefaultCost, appLogger)

	router := httpDelivery.NewRouter(httpDelivery.Handlers{
		Products:   handler.NewProductHandler(productService, appLogger),
		Reviews:    handler.NewReviewHandler(reviewService, appLogger),
		Categories: handler.NewCategoryHandler(categoryService, appLogger),
		Users:      handler.NewUserHandler(userService, appLogger),
	}, userService, cfg, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
