// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockcontrol/internal/domain/notification"
	"stockcontrol/internal/domain/order"
	"stockcontrol/internal/domain/permission"
	"stockcontrol/internal/domain/product"
	"stockcontrol/internal/domain/stock"
	"stockcontrol/internal/domain/user"
	"stockcontrol/internal/infrastructure/http/v1/handlers"
	"stockcontrol/internal/infrastructure/http/v1/middleware"
	"stockcontrol/internal/infrastructure/storage/postgres"
	"stockcontrol/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger       *logger.Logger
	Pool         *postgres.Pool
	JWTValidator middleware.JWTValidator

	Users         *user.Service
	Products      *product.Service
	Ledger        *stock.Ledger
	Recorder      *stock.Recorder
	Orders        *order.Service
	Notifier      *notification.Notifier
	Notifications notification.Repository
	Resolver      *permission.Resolver
	Permissions   permission.Repository
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery first, error handler renders everything.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(cfg.Users)
	productHandler := handlers.NewProductHandler(cfg.Products, cfg.Ledger)
	stockHandler := handlers.NewStockHandler(cfg.Recorder, cfg.Ledger)
	orderHandler := handlers.NewOrderHandler(cfg.Orders)
	notificationHandler := handlers.NewNotificationHandler(cfg.Notifications, cfg.Notifier)
	permissionHandler := handlers.NewPermissionHandler(cfg.Resolver, cfg.Permissions)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/verify", authHandler.Verify)
		}

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		products := protected.Group("/products")
		{
			products.GET("", middleware.RequirePermission(permission.KeyProdutosVisualizar), productHandler.List)
			products.GET("/low-stock", middleware.RequirePermission(permission.KeyInventarioVisualizar), productHandler.LowStock)
			products.GET("/:id", middleware.RequirePermission(permission.KeyProdutosVisualizar), productHandler.Get)
			products.POST("", middleware.RequirePermission(permission.KeyProdutosCriar), productHandler.Create)
			products.PUT("/:id", middleware.RequirePermission(permission.KeyProdutosEditar), productHandler.Update)
			products.DELETE("/:id", middleware.RequirePermission(permission.KeyProdutosEditar), productHandler.Delete)
		}

		stockGroup := protected.Group("/stock")
		{
			stockGroup.POST("/movements", middleware.RequirePermission(permission.KeyEstoqueGerenciar), stockHandler.Record)
			stockGroup.GET("/products/:id/balance", middleware.RequirePermission(permission.KeyInventarioVisualizar), stockHandler.Balance)
			stockGroup.GET("/products/:id/movements", middleware.RequirePermission(permission.KeyInventarioVisualizar), stockHandler.History)
		}

		orders := protected.Group("/orders")
		{
			orders.GET("", middleware.RequirePermission(permission.KeyVendasVisualizar), orderHandler.List)
			orders.GET("/:id", middleware.RequirePermission(permission.KeyVendasVisualizar), orderHandler.Get)
			orders.POST("", middleware.RequirePermission(permission.KeyVendasRealizar), orderHandler.Create)
			orders.POST("/:id/process", middleware.RequirePermission(permission.KeyVendasRealizar), orderHandler.Process)
			orders.POST("/:id/conclude", middleware.RequirePermission(permission.KeyEstoqueGerenciar), orderHandler.Conclude)
			orders.POST("/:id/cancel", middleware.RequirePermission(permission.KeyEstoqueGerenciar), orderHandler.Cancel)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/scan", middleware.RequirePermission(permission.KeyInventarioVisualizar), notificationHandler.Scan)
		}

		users := protected.Group("/users")
		{
			users.POST("", middleware.RequirePermission(permission.KeyUsuariosCriar), authHandler.CreateUser)
			users.GET("/:id/permissions", middleware.RequirePermission(permission.KeyUsuariosVisualizar), permissionHandler.Effective)
		}

		permissions := protected.Group("/permissions")
		{
			permissions.GET("", middleware.RequirePermission(permission.KeyUsuariosVisualizar), permissionHandler.Catalog)
			permissions.PUT("/grants", middleware.RequireRole(user.RoleProprietario, user.RoleAdmin), permissionHandler.SetGrant)
		}
	}

	return router
}
