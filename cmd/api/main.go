package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/partyhoard/backend/internal/config"
	"github.com/partyhoard/backend/internal/db"
	"github.com/partyhoard/backend/internal/events"
	apphttp "github.com/partyhoard/backend/internal/http"
	"github.com/partyhoard/backend/internal/http/handlers"
	"github.com/partyhoard/backend/internal/repositories"
	"github.com/partyhoard/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	inventoryRepo := repositories.NewInventoryRepo(pool)
	itemRepo := repositories.NewItemRepo(pool)
	historyRepo := repositories.NewHistoryRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	recorder := services.NewRecorder(historyRepo)
	inventoryService := services.NewInventoryService(inventoryRepo, cfg, log)
	itemService := services.NewItemService(pool, itemRepo, recorder, publisher, log)
	currencyService := services.NewCurrencyService(pool, inventoryRepo, recorder, publisher, log)
	historyService := services.NewHistoryService(pool, historyRepo, itemRepo, inventoryRepo, recorder, publisher, log)

	// Handlers
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, log)
	itemHandler := handlers.NewItemHandler(itemService, log)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, log)
	historyHandler := handlers.NewHistoryHandler(historyService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, inventoryService,
		inventoryHandler, itemHandler, currencyHandler, historyHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
