package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/loomshop/loomshop-backend/config"
	"github.com/loomshop/loomshop-backend/internal/app/controller"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/internal/app/service"
	"github.com/loomshop/loomshop-backend/internal/db"
	"github.com/loomshop/loomshop-backend/internal/middleware"
	"github.com/loomshop/loomshop-backend/internal/router"
	"github.com/loomshop/loomshop-backend/internal/scheduler"
	"github.com/loomshop/loomshop-backend/internal/storage"
	"github.com/loomshop/loomshop-backend/internal/websocket"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"github.com/loomshop/loomshop-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console",
		EnableColor: true,
	})

	logger.Info("Starting LOOMSHOP Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// cache and token revocation; a missing redis degrades to DB reads
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, catalog caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Repositories
	productRepo := repository.NewProductRepository(db.GetDB(), cfg.Catalog.LookupBatch)
	optionRepo := repository.NewOptionRepository(db.GetDB())
	upsellRepo := repository.NewUpsellRepository(db.GetDB())
	collectionRepo := repository.NewCollectionRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Admin order feed
	orderFeed := websocket.NewHub()
	go orderFeed.Run()

	// Services
	productService := service.NewProductService(productRepo, cfg.Catalog.CacheTTL)
	optionService := service.NewOptionService(optionRepo, productRepo)
	upsellService := service.NewUpsellService(upsellRepo, productRepo, cfg.Catalog.CacheTTL)
	collectionService := service.NewCollectionService(collectionRepo, productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, upsellRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, cartService, orderFeed)

	// Controllers
	productController := controller.NewProductController(productService)
	optionController := controller.NewOptionController(optionService)
	upsellController := controller.NewUpsellController(upsellService)
	collectionController := controller.NewCollectionController(collectionService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	uploadController := controller.NewUploadController(storage.NewMediaStore(cfg.S3))
	authController := controller.NewAuthController()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly bundle reprice
	repriceScheduler := scheduler.NewRepriceScheduler(upsellService, cfg.Catalog.RepriceCron)
	if err := repriceScheduler.Start(); err != nil {
		logger.Fatal("Failed to start reprice scheduler", err)
	}
	defer repriceScheduler.Stop()

	r := router.NewRouter(
		authController,
		productController,
		optionController,
		upsellController,
		collectionController,
		cartController,
		orderController,
		uploadController,
		orderFeed,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
