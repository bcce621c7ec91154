package main

import (
	"log"
	"os"

	_ "stocktrack/api/swagger" // swagger docs
	"stocktrack/internal/database"
	"stocktrack/internal/handler"
	"stocktrack/internal/middleware"
	"stocktrack/internal/repository"
	"stocktrack/internal/service"
	"stocktrack/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           StockTrack API
// @version         1.0
// @description     Inventory tracking backend: stock items, defect logs, user accounts and an activity audit trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Bootstrap(db); err != nil {
		log.Fatalf("Admin bootstrap failed: %v", err)
	}

	secret := middleware.GetSessionSecret()

	// Set up WebSocket Hub for dashboard freshness events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	defectRepo := repository.NewDefectRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	txManager := repository.NewTransactionManager(db)

	activityService := service.NewActivityService(activityRepo)
	authService := service.NewAuthService(userRepo, activityService, secret)
	userService := service.NewUserService(userRepo, activityService, txManager)
	inventoryService := service.NewInventoryService(inventoryRepo, activityService, wsHub)
	defectService := service.NewDefectService(defectRepo, inventoryRepo, activityService, txManager, wsHub)
	statisticsService := service.NewStatisticsService(db)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, db, secret)
	userHandler := handler.NewUserHandler(userService, db, secret)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, db, secret)
	defectHandler := handler.NewDefectHandler(defectService, db, secret)
	activityHandler := handler.NewActivityHandler(activityService, db, secret)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService, db, secret)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.RequestID())
	router.Use(middleware.NoStore())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	defectHandler.RegisterRoutes(router.Group(""))
	activityHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
