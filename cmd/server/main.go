package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	costingapp "github.com/restoops/backend/internal/application/costing"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/infrastructure/config"
	"github.com/restoops/backend/internal/infrastructure/event"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/restoops/backend/internal/infrastructure/persistence"
	"github.com/restoops/backend/internal/infrastructure/queue"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting cost cascade worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize Redis client backing the job queue
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis connected successfully")

	// Initialize repositories. Ingredient, batch and cost history access always
	// happens inside the transaction scope, so no standalone repos for those.
	recipeRepo := persistence.NewGormRecipeRepository(db.DB)
	menuItemRepo := persistence.NewGormMenuItemRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	branchMenuRepo := persistence.NewGormBranchMenuRepository(db.DB)
	settingsRepo := persistence.NewGormCompanySettingsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	marginAlertHandler := costingapp.NewMarginBelowThresholdHandler(log)
	eventBus.Subscribe(marginAlertHandler, costing.EventTypeMarginBelowThreshold)

	// Initialize the job queue
	jobQueue := queue.NewRedisQueue(redisClient, queue.RedisQueueConfig{
		Name:        cfg.Queue.Name,
		Concurrency: cfg.Queue.Concurrency,
		PopTimeout:  time.Second,
		PromoteTick: cfg.Queue.PromoteTick,
		MaxAttempts: cfg.Queue.MaxAttempts,
		BackoffBase: cfg.Queue.BackoffBase,
	}, log)

	// Initialize application services
	valuationService := costingapp.NewValuationService(txScope, jobQueue, eventBus)
	dispatcher := costingapp.NewCascadeDispatcher(recipeRepo, menuItemRepo, jobQueue)
	marginMonitor := costingapp.NewMarginMonitor(eventBus)
	recipeCostService := costingapp.NewRecipeCostService(txScope, dispatcher, eventBus)
	menuCostService := costingapp.NewMenuCostService(menuItemRepo, recipeRepo, settingsRepo, marginMonitor, jobQueue, eventBus)
	branchMenuService := costingapp.NewBranchMenuService(menuItemRepo, branchRepo, branchMenuRepo)

	// Bind job handlers and start workers
	costingapp.RegisterHandlers(jobQueue, valuationService, dispatcher, recipeCostService, menuCostService, branchMenuService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := jobQueue.Start(ctx); err != nil {
		log.Fatal("Failed to start queue workers", zap.Error(err))
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))

	cancel()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	if err := jobQueue.Stop(stopCtx); err != nil {
		log.Error("Queue workers did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited")
}
