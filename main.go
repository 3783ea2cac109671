package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/momandme/tailorshop-api/config"
	"github.com/momandme/tailorshop-api/controllers"
	"github.com/momandme/tailorshop-api/middleware"
	"github.com/momandme/tailorshop-api/models"
	"github.com/momandme/tailorshop-api/services"
)

// reminderInterval is how often the background sweep looks for upcoming
// trials, deliveries and overdue balances.
const reminderInterval = time.Hour

func main() {
	log.Println("Starting Tailor Shop API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.StatusHistoryEntry{},
		&models.Expense{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if cfg.UseS3() {
		s3Service, err := services.NewS3Service(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(services.NewS3ImageService(s3Service))
		log.Printf("Photo storage: S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		services.InitImageService(services.NewLocalImageService(cfg.UploadDir))
		log.Printf("Photo storage: local directory %s", cfg.UploadDir)
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpireHours)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	registerRoutes(router, tokens)

	startReminderScheduler(cfg)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func registerRoutes(router *gin.Engine, tokens *services.TokenService) {
	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)

		// Register is public only while no users exist; after the first
		// account it requires a valid token (checked inside the handler).
		api.POST("/auth/register", controllers.Register(tokens))
		api.POST("/auth/login", controllers.Login(tokens))

		// Local photo storage; refs embedded in SPA <img> tags
		api.GET("/uploads/:filename", controllers.GetUploadedImage)
	}

	protected := router.Group("/api", middleware.RequireAuth(tokens))
	{
		auth := protected.Group("/auth")
		{
			auth.GET("/me", controllers.GetMe)
			auth.PUT("/updatedetails", controllers.UpdateDetails)
			auth.PUT("/updatepassword", controllers.UpdatePassword(tokens))
			auth.GET("/users", controllers.ListUsers)
			auth.PUT("/users/:id/activate", controllers.SetUserActive(true))
			auth.PUT("/users/:id/deactivate", controllers.SetUserActive(false))
		}

		orders := protected.Group("/orders")
		{
			orders.GET("", controllers.ListOrders)
			orders.POST("", controllers.CreateOrder)
			orders.GET("/stats", controllers.OrderStats)
			orders.GET("/upcoming/trials", controllers.UpcomingTrials)
			orders.GET("/upcoming/deliveries", controllers.UpcomingDeliveries)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id", controllers.UpdateOrder)
			orders.DELETE("/:id", controllers.DeleteOrder)
			orders.POST("/:id/photos", controllers.UploadOrderPhotos)
			orders.DELETE("/:id/photos/:index", controllers.DeleteOrderPhoto)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.GET("", controllers.ListExpenses)
			expenses.POST("", controllers.CreateExpense)
			expenses.GET("/stats", controllers.ExpenseStats)
			expenses.GET("/monthly", controllers.MonthlyExpenses)
			expenses.GET("/:id", controllers.GetExpense)
			expenses.PUT("/:id", controllers.UpdateExpense)
			expenses.DELETE("/:id", controllers.DeleteExpense)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", controllers.ListNotifications)
			notifications.POST("/check-reminders", controllers.CheckReminders)
			notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			notifications.DELETE("/:id", controllers.DeleteNotification)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/dashboard", controllers.Dashboard)
			reports.GET("/export", controllers.ExportReport)
			reports.GET("/custom", controllers.CustomReport)
		}
	}
}

// startReminderScheduler runs the reminder sweep on an interval so the
// shop gets trial/delivery/payment notifications without anyone hitting
// the check-reminders endpoint.
func startReminderScheduler(cfg *config.Config) {
	reminders := services.NewReminderService(config.GetDB(), cfg.ShopName)

	go func() {
		ticker := time.NewTicker(reminderInterval)
		defer ticker.Stop()

		for range ticker.C {
			result, err := reminders.RunReminderSweep(time.Now())
			if err != nil {
				log.Printf("Reminder sweep failed: %v", err)
				continue
			}
			if total := result.TrialReminders + result.DeliveryReminders + result.PaymentReminders; total > 0 {
				log.Printf("Reminder sweep created %d notifications (trial=%d delivery=%d payment=%d)",
					total, result.TrialReminders, result.DeliveryReminders, result.PaymentReminders)
			}
		}
	}()
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tailor Shop API is running",
	})
}
