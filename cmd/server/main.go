package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"print_shop/internal/broker"
	"print_shop/internal/config"
	"print_shop/internal/database"
	"print_shop/internal/handlers"
	"print_shop/internal/middleware"
	"print_shop/internal/redis"
	"print_shop/internal/repository"
	"print_shop/internal/services"
	"print_shop/internal/worker"
	"print_shop/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis (tracking view cache)
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize WhatsApp client (direct notification channel)
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	printerRepo := repository.NewPrinterRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Pick the notification strategy once at startup: queued when a
	// broker is configured, direct synchronous sends otherwise.
	var dispatcher services.Dispatcher
	var queue services.Enqueuer
	if cfg.QueueEnabled() {
		brokerClient, err := broker.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatal("Failed to connect to broker:", err)
		}
		defer brokerClient.Close()

		queue = brokerClient
		dispatcher = services.NewQueuedDispatcher(brokerClient)

		notificationWorker := worker.New(brokerClient, whatsappClient, settingsRepo, clientRepo, cfg.WorkerCount)
		go notificationWorker.Run(context.Background())
		log.Printf("Notification queue enabled, running %d workers", cfg.WorkerCount)
	} else {
		dispatcher = services.NewDirectDispatcher(whatsappClient, settingsRepo)
		log.Println("No broker configured, notifications are sent directly")
	}

	// Initialize services
	pricingService := services.NewPricingService(productRepo)
	notificationService := services.NewNotificationService(dispatcher, settingsRepo)
	orderService := services.NewOrderService(orderRepo, printerRepo, saleRepo, clientRepo, pricingService, notificationService, queue)
	saleService := services.NewSaleService(orderRepo, saleRepo, notificationService)
	trackingService := services.NewTrackingService(orderRepo, redisClient, time.Duration(cfg.TrackingCacheTTL)*time.Second)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, saleService)
	printerHandler := handlers.NewPrinterHandler(printerRepo)
	trackingHandler := handlers.NewTrackingHandler(trackingService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")

	// Authenticated, tenant-scoped surface
	auth := api.Group("")
	auth.Use(middleware.Auth(cfg.JWTSecret, cfg.DefaultTenantID, !cfg.IsProduction()))
	{
		auth.GET("/orders", orderHandler.List)
		auth.GET("/orders/summary", orderHandler.Summary)
		auth.GET("/orders/:id", orderHandler.Get)
		auth.GET("/orders/:id/timeline", orderHandler.Timeline)

		admin := auth.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/orders", orderHandler.Create)
			admin.PUT("/orders/:id", orderHandler.Update)
			admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
			admin.POST("/orders/:id/register-sale", orderHandler.RegisterSale)
			admin.POST("/orders/:id/resend-tracking", orderHandler.ResendTracking)

			admin.GET("/printers", printerHandler.List)
			admin.POST("/printers", printerHandler.Create)
			admin.DELETE("/printers/:id", printerHandler.Delete)
		}
	}

	// Public tracking surface
	public := api.Group("/track")
	public.Use(middleware.RateLimit("30-M"))
	{
		public.GET("/:code", trackingHandler.Get)
		public.POST("/:code/feedback", trackingHandler.SubmitFeedback)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
