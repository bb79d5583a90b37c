package main

import (
	"log"
	"net/http"

	config "shop-analytics-api/configs"
	"shop-analytics-api/pkg/handlers"
	"shop-analytics-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	r := gin.Default()

	// Services
	monitoringService := services.NewMonitoringService()
	transactionService := services.NewTransactionService()
	customerService := services.NewCustomerService(transactionService)
	segmentationService := services.NewSegmentationService()
	abcService := services.NewABCService()
	cohortService := services.NewCohortService()
	latencyService := services.NewLatencyService()
	lifetimesService := services.NewLifetimesService()
	productService := services.NewProductService()
	reportService := services.NewReportService()

	// Handlers
	analyticsHandler := handlers.NewAnalyticsHandler(
		transactionService,
		customerService,
		segmentationService,
		abcService,
		cohortService,
		latencyService,
		lifetimesService,
		productService,
		reportService,
		cfg,
	)
	importHandler := handlers.NewImportHandler()
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// Middleware
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" || apiKey == "default_secret_key" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		v1.GET("/hello", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Hello from Shop Analytics API!",
			})
		})

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		v1.POST("/transactions", analyticsHandler.GetTransactions)
		v1.POST("/customers", analyticsHandler.GetCustomers)

		segments := v1.Group("/segments")
		{
			segments.POST("/rfm", analyticsHandler.GetRFMSegments)
			segments.POST("/abc", analyticsHandler.GetABCSegments)
		}

		cohorts := v1.Group("/cohorts")
		{
			cohorts.POST("", analyticsHandler.GetCohorts)
			cohorts.POST("/retention", analyticsHandler.GetRetention)
			cohorts.POST("/matrix", analyticsHandler.GetCohortMatrix)
		}

		v1.POST("/latency", analyticsHandler.GetLatency)
		v1.POST("/predictions", analyticsHandler.GetPredictions)

		products := v1.Group("/products")
		{
			products.POST("", analyticsHandler.GetProducts)
			products.POST("/abc", analyticsHandler.GetProductABCSegments)
			products.POST("/repurchase", analyticsHandler.GetRepurchaseRates)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("/period-overview", analyticsHandler.GetPeriodOverview)
		}

		v1.POST("/import", importHandler.ImportFile)
	}

	log.Printf("Starting Shop Analytics API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
