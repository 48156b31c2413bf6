package main

import (
	"os"

	"github.com/Gargooie/Order-Management-API/config"
	"github.com/Gargooie/Order-Management-API/internal/cache"
	"github.com/Gargooie/Order-Management-API/internal/delivery"
	"github.com/Gargooie/Order-Management-API/internal/domain"
	"github.com/Gargooie/Order-Management-API/internal/repository"
	"github.com/Gargooie/Order-Management-API/internal/usecase"
	"github.com/Gargooie/Order-Management-API/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting Order Management API...")

	deletePolicy := domain.CategoryDeletePolicy(cfg.CategoryDeletePolicy)
	if !domain.IsValidDeletePolicy(deletePolicy) {
		logger.Fatalf("Invalid CATEGORY_DELETE_POLICY '%s' (expected '%s' or '%s')",
			cfg.CategoryDeletePolicy, domain.DetachProducts, domain.RestrictDelete)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	if err := db.EnsureSchema(database); err != nil {
		logger.Fatalf("Failed to ensure database schema: %v", err)
	}
	logger.Info("Database schema ensured.")

	var reportCache domain.ReportCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisReportCache(cfg.RedisAddr, cfg.ReportCacheTTL, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to redis at %s: %v", cfg.RedisAddr, err)
		}
		reportCache = redisCache
		logger.Info("Report cache connected.")
	}

	// --- Dependency Injection ---
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	clientRepo := repository.NewPostgresClientRepository(database, logger)
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	orderItemRepo := repository.NewPostgresOrderItemRepository(database, logger)
	reportRepo := repository.NewPostgresReportRepository(database, logger)
	logger.Info("Repositories initialized.")

	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, deletePolicy, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, categoryRepo, logger)
	clientUseCase := usecase.NewClientUseCase(clientRepo, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, orderItemRepo, clientRepo, reportCache, logger)
	reportUseCase := usecase.NewReportUseCase(reportRepo, categoryRepo, reportCache, logger)
	logger.Info("Use cases initialized.")

	categoryHandler := delivery.NewCategoryHandler(categoryUseCase, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)
	clientHandler := delivery.NewClientHandler(clientUseCase, logger)
	orderHandler := delivery.NewOrderHandler(orderUseCase, logger)
	reportHandler := delivery.NewReportHandler(reportUseCase, logger)
	logger.Info("Handlers initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))

	router.GET("/", func(c *gin.Context) {
		delivery.SuccessResponse(c, 200, "Order Management API", gin.H{
			"categories": "/categories",
			"products":   "/products",
			"clients":    "/clients",
			"orders":     "/orders",
			"reports":    "/reports/top-products",
		})
	})

	categoryHandler.RegisterRoutes(router)
	productHandler.RegisterRoutes(router)
	clientHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)
	reportHandler.RegisterRoutes(router)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on %s", cfg.HTTPPort)
	if err := router.Run(cfg.HTTPPort); err != nil {
		logger.Errorf("Failed to start server on %s: %v", cfg.HTTPPort, err)
		os.Exit(1)
	}
}
