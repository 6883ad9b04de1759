package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kunal-qd/fabric-orders-api/config"
	"github.com/kunal-qd/fabric-orders-api/controllers"
	"github.com/kunal-qd/fabric-orders-api/middleware"
	"github.com/kunal-qd/fabric-orders-api/models"
	"github.com/kunal-qd/fabric-orders-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Fabric Orders API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Customer{}, &models.Order{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize the S3-backed blob store for reference photos
	if _, err := services.InitBlobStore(); err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all API routes registered
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		// Public endpoints
		api.GET("/health", healthCheck)
		api.POST("/login", controllers.Login)

		// Everything else requires the admin session
		authed := api.Group("")
		authed.Use(middleware.RequireSession(cfg))
		{
			authed.POST("/logout", controllers.Logout)
			authed.GET("/customers/search", controllers.SearchCustomers)
			authed.POST("/orders", controllers.CreateOrder)
			authed.GET("/orders/list", controllers.ListOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.PUT("/orders/:id", controllers.UpdateOrder)
			authed.DELETE("/orders/:id", controllers.DeleteOrder)
			authed.GET("/orders/:id/print", controllers.PrintOrder)
			authed.GET("/dashboard/kpis", controllers.DashboardKPIs)
			// wildcard: blob keys contain slashes (uploads/...)
			authed.GET("/image/*fid", controllers.GetImage)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fabric Orders API is running",
	})
}
