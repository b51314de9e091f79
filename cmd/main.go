package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/sirupsen/logrus"

	"label-service/internal/carrier"
	"label-service/internal/config"
	"label-service/internal/events"
	"label-service/internal/handlers"
	"label-service/internal/middleware"
	"label-service/internal/models"
	"label-service/internal/repository"
	"label-service/internal/services"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	appLogger := logrus.New()
	appLogger.SetFormatter(&logrus.JSONFormatter{})
	appLogger.SetLevel(logrus.InfoLevel)

	appLogger.Info("Starting Label Service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger.Info("Configuration loaded successfully")

	// Connect to database
	db, err := connectDatabase(cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	appLogger.Info("Database connected successfully")

	// Run migrations
	if err := runMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	appLogger.Info("Database migrations completed")

	// Seed demo data so fresh environments have orders to print against
	if err := repository.SeedDemoOrders(db, appLogger); err != nil {
		appLogger.WithError(err).Warn("Failed to seed demo orders")
	}

	// Initialize Redis client (optional - graceful degradation if Redis unavailable)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			appLogger.WithError(err).Warn("Failed to parse Redis URL, continuing without Redis")
		} else {
			redisClient = redis.NewClient(opt)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				appLogger.WithError(err).Warn("Failed to connect to Redis, continuing without Redis")
				redisClient = nil
			} else {
				appLogger.Info("Connected to Redis")
			}
		}
	} else {
		appLogger.Info("REDIS_URL not configured, distributed rate limiting disabled")
	}

	// Initialize NATS events publisher
	eventsPublisher, err := events.NewPublisher(appLogger)
	if err != nil {
		appLogger.WithError(err).Warn("Failed to initialize events publisher, events won't be published")
		eventsPublisher = nil
	} else {
		defer eventsPublisher.Close()
		appLogger.Info("NATS events publisher initialized")
	}

	// Initialize carrier credential resolver and client
	resolver := carrier.NewResolver(cfg.Sendify.APIKey, cfg.Sendify.BookURL, cfg.Sendify.PrintURL)
	if !resolver.HasServerKey() {
		appLogger.Warn("SENDIFY_API_KEY not set: booking runs in mock mode, printing requires an x-api-key header")
	}
	carrierClient := carrier.NewClient(resolver, logrus.NewEntry(appLogger))

	// Initialize repository and services
	orderRepo := repository.NewOrderRepository(db)
	var publisher services.EventPublisher
	if eventsPublisher != nil {
		publisher = eventsPublisher
	}
	labelService := services.NewLabelService(orderRepo, carrierClient, publisher, cfg.Warehouse, appLogger)
	appLogger.Info("Label orchestrator initialized")

	// Initialize handlers
	labelHandler := handlers.NewLabelHandler(labelService, carrierClient, appLogger)
	orderHandler := handlers.NewOrderHandler(orderRepo, appLogger)

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMw := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	appLogger.Info("RBAC middleware initialized")

	// Setup router
	router := setupRouter(labelHandler, orderHandler, cfg, rbacMw, redisClient, appLogger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	appLogger.WithFields(logrus.Fields{
		"addr": addr,
		"env":  cfg.Server.Env,
	}).Info("Starting server")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// connectDatabase establishes a connection to the PostgreSQL database
func connectDatabase(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
	)
}

// setupRouter configures the Gin router with routes and middleware
func setupRouter(labelHandler *handlers.LabelHandler, orderHandler *handlers.OrderHandler, cfg *config.Config, rbacMw *rbac.Middleware, redisClient *redis.Client, appLogger *logrus.Logger) *gin.Engine {
	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())

	// Security headers middleware
	router.Use(gosharedmw.SecurityHeaders())

	// Rate limiting middleware (uses Redis for distributed rate limiting)
	if redisClient != nil {
		router.Use(gosharedmw.RedisRateLimitMiddlewareWithProfile(redisClient, "standard"))
		appLogger.Info("Redis-based rate limiting enabled")
	} else {
		router.Use(gosharedmw.RateLimit())
		appLogger.Info("In-memory rate limiting enabled (Redis unavailable)")
	}

	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORS())

	// IstioAuth middleware - extracts JWT claims from x-jwt-claim-* headers
	// This MUST come before TenantMiddleware and RBAC middleware
	router.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        false, // Don't require auth for all routes (health)
		AllowLegacyHeaders: true,  // Allow X-Tenant-ID fallback during migration
		SkipPaths: []string{
			"/health",
		},
	}))

	// Tenant context middleware (reads from IstioAuth context or legacy headers)
	router.Use(middleware.TenantMiddleware())
	router.Use(middleware.ErrorHandler(appLogger))

	// Health check
	router.GET("/health", labelHandler.HealthCheck)

	// API routes
	api := router.Group("/api")
	{
		// Orders - Read operations (require shipping:read permission)
		api.GET("/orders", rbacMw.RequirePermission(rbac.PermissionShippingRead), orderHandler.ListOrders)
		api.GET("/orders/:id", rbacMw.RequirePermission(rbac.PermissionShippingRead), orderHandler.GetOrder)

		// Label generation (require shipping:create permission)
		api.POST("/orders/:id/label/generate", rbacMw.RequirePermission(rbac.PermissionShippingCreate), labelHandler.GenerateLabel)

		// Manual label-state update (require shipping:update permission)
		api.PUT("/orders/:id/label", rbacMw.RequirePermission(rbac.PermissionShippingUpdate), orderHandler.UpdateLabelStatus)

		// Carrier connectivity probe (require shipping:manage permission)
		api.POST("/carrier/test-connection", rbacMw.RequirePermission(rbac.PermissionShippingManage), labelHandler.TestCarrierConnection)
	}

	return router
}
