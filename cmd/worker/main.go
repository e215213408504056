// Package main runs the periodic low-stock scan worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"stockcontrol/internal/domain/notification"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/infrastructure/lock"
	"stockcontrol/internal/infrastructure/storage/postgres"
	"stockcontrol/internal/infrastructure/storage/postgres/auth_repo"
	"stockcontrol/internal/infrastructure/storage/postgres/catalog_repo"
	"stockcontrol/internal/infrastructure/storage/postgres/notification_repo"
	"stockcontrol/internal/infrastructure/storage/postgres/stock_repo"
	"stockcontrol/internal/obs"
	"stockcontrol/pkg/config"
	"stockcontrol/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockcontrol worker")

	obs.Register()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	txManager := postgres.NewTxManager(pool)

	userRepo := auth_repo.NewUserRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	movementRepo := stock_repo.NewMovementRepo(txManager)
	notificationRepo := notification_repo.NewNotificationRepo(txManager)

	notifier := notification.NewNotifier(
		productRepo,
		stock.NewLedger(movementRepo),
		notificationRepo,
		userRepo,
		txManager,
		lock.NewRedisGuard(redisClient, "lowstock:scan:all", 10*time.Minute),
		lock.NewRedisGuard(redisClient, "lowstock:scan:company", 10*time.Minute),
		notification.NotifierConfig{
			MaturityWindow: cfg.Notifier.MaturityWindow,
			DedupWindow:    cfg.Notifier.DedupWindow,
			Locale:         cfg.Notifier.Locale,
		},
	)

	scheduler := notification.NewScheduler(notifier, cfg.Notifier.Interval)
	scheduler.Start(ctx)
	log.Infow("scan scheduler started", "interval", cfg.Notifier.Interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Stop()
	log.Info("worker stopped")
}
