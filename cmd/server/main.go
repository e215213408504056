// Package main is the entry point for the StockControl API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"stockcontrol/internal/domain/notification"
	"stockcontrol/internal/domain/order"
	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/infrastructure/cache"
	v1 "stockcontrol/internal/infrastructure/http/v1"
	"stockcontrol/internal/infrastructure/lock"
	infranumerator "stockcontrol/internal/infrastructure/numerator"
	"stockcontrol/internal/infrastructure/storage/postgres"
	"stockcontrol/internal/infrastructure/storage/postgres/auth_repo"
	"stockcontrol/internal/infrastructure/storage/postgres/catalog_repo"
	"stockcontrol/internal/infrastructure/storage/postgres/notification_repo"
	"stockcontrol/internal/infrastructure/storage/postgres/order_repo"
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
	log.Info("starting stockcontrol server")

	obs.Register()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	txManager := postgres.NewTxManager(pool)

	userRepo := auth_repo.NewUserRepo(txManager)
	companyRepo := auth_repo.NewCompanyRepo(txManager)
	permissionRepo := auth_repo.NewPermissionRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	movementRepo := stock_repo.NewMovementRepo(txManager)
	notificationRepo := notification_repo.NewNotificationRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	resolver := permission.NewResolver(userRepo, permissionRepo)
	ledger := stock.NewLedger(movementRepo)
	recorder := stock.NewRecorder(movementRepo, productRepo, ledger, resolver, auditService, txManager)
	productService := product.NewService(productRepo)

	jwtConfig := user.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtConfig.AccessTokenTTL = cfg.JWT.AccessTTL
	jwtService := user.NewJWTService(jwtConfig)

	userService := user.NewService(
		userRepo,
		companyRepo,
		cache.NewSignupStore(redisClient),
		resolver,
		txManager,
		jwtService,
		user.DefaultServiceConfig(),
	)

	orderService := order.NewService(
		orderRepo,
		movementRepo,
		infranumerator.New(txManager),
		auditService,
		resolver,
		txManager,
	)

	notifier := notification.NewNotifier(
		productRepo,
		ledger,
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

	router := v1.NewRouter(v1.RouterConfig{
		Logger:        log,
		Pool:          pool,
		JWTValidator:  jwtService,
		Users:         userService,
		Products:      productService,
		Ledger:        ledger,
		Recorder:      recorder,
		Orders:        orderService,
		Notifier:      notifier,
		Notifications: notificationRepo,
		Resolver:      resolver,
		Permissions:   permissionRepo,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}

	log.Info("server stopped")
}
