// internal/router/router.go
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/prodcrm-backend/internal/config"
	"github.com/javajoker/prodcrm-backend/internal/handlers"
	"github.com/javajoker/prodcrm-backend/internal/middleware"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/services"
)

// Dependencies are the backing services the router wires into handlers.
// Cache may be nil, in which case production stats are never cached.
type Dependencies struct {
	Store   repositories.Store
	Cache   services.StatsCache
	Storage services.FileStorage
	Logger  *logrus.Logger
}

// Initialize builds the engine. The returned func stops the rate limiters'
// background cleanup and should be called on shutdown.
func Initialize(cfg *config.Config, deps Dependencies) (*gin.Engine, func()) {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// Initialize services
	auditService := services.NewAuditService(deps.Store.Audit(), logger)
	productionService := services.NewProductionService(deps.Store, auditService, deps.Cache, cfg.Production)
	inventoryService := services.NewInventoryService(deps.Store, auditService)
	orderService := services.NewOrderService(deps.Store, auditService, deps.Storage, productionService)
	authService := services.NewAuthService(deps.Store, auditService, cfg.JWT)
	adminService := services.NewAdminService(deps.Store, auditService)

	// Initialize handlers
	var cachePinger handlers.Pinger
	if p, ok := deps.Cache.(handlers.Pinger); ok {
		cachePinger = p
	}
	healthHandler := handlers.NewHealthHandler(deps.Store, cachePinger)
	authHandler := handlers.NewAuthHandler(authService)
	productionHandler := handlers.NewProductionHandler(productionService)
	orderHandler := handlers.NewOrderHandler(orderService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	adminHandler := handlers.NewAdminHandler(adminService)

	generalLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	authLimiter := middleware.NewRateLimiter(authRate(cfg.RateLimit.AuthPerMinute), cfg.RateLimit.AuthPerMinute)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.Frontend))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimiter.Middleware(auditService))

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authLimiter.Middleware(auditService), authHandler.Login)
			auth.POST("/refresh", authLimiter.Middleware(auditService), authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(auditService), authHandler.Me)
		}

		production := v1.Group("/production")
		{
			production.GET("/items", middleware.OptionalAuth(), productionHandler.GetItems)
			production.GET("/stats", middleware.OptionalAuth(), productionHandler.GetStats)

			protected := production.Group("")
			protected.Use(middleware.AuthRequired(auditService))
			{
				protected.PUT("/items/:id/stages/:stage", productionHandler.UpdateStage)
				protected.POST("/items/:id/defects", productionHandler.ReportDefect)
			}
		}

		clients := v1.Group("/clients")
		clients.Use(middleware.AuthRequired(auditService))
		{
			clients.GET("", orderHandler.ListClients)
			clients.POST("", orderHandler.CreateClient)
			clients.GET("/:id", orderHandler.GetClient)
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired(auditService))
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/status", orderHandler.UpdateStatus)
			orders.PUT("/:id/priority", orderHandler.UpdatePriority)
			orders.POST("/:id/attachments", orderHandler.UploadAttachment)
		}

		inventory := v1.Group("/inventory")
		inventory.Use(middleware.AuthRequired(auditService))
		{
			inventory.GET("", inventoryHandler.ListItems)
			inventory.POST("", inventoryHandler.CreateItem)
			inventory.GET("/:id", inventoryHandler.GetItem)
			inventory.POST("/:id/receipts", inventoryHandler.ReceiveStock)
			inventory.GET("/:id/transactions", inventoryHandler.ListTransactions)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(auditService))
		admin.Use(middleware.AdminRequired(auditService))
		{
			admin.GET("/users", adminHandler.GetUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	stop := func() {
		generalLimiter.Stop()
		authLimiter.Stop()
	}
	return r, stop
}

func authRate(perMinute int) rate.Limit {
	if perMinute <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(perMinute))
}
