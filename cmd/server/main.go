package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/pitchroast/api/internal/client"
	"github.com/pitchroast/api/internal/config"
	"github.com/pitchroast/api/internal/handler"
	"github.com/pitchroast/api/internal/middleware"
	"github.com/pitchroast/api/internal/service"
	"github.com/pitchroast/api/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Postgres
	db, err := store.Open(cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	pg := store.New(db)
	if err := pg.Ping(ctx); err != nil {
		log.Printf("Warning: Postgres not available: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize external clients
	openaiClient := client.NewOpenAIClient(&cfg.OpenAI)
	if !openaiClient.IsConfigured() {
		log.Println("Warning: OPENAI_API_KEY not set, roast generation will fail")
	}
	if !openaiClient.AssistantConfigured() {
		log.Println("Warning: OPENAI_ASSISTANT_ID not set, roast generation will fail")
	}

	// Initialize S3 client (optional - continues if not configured)
	var storageClient client.StorageClient
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		s3Client, err := client.NewS3Client(&cfg.Storage)
		if err != nil {
			log.Printf("Warning: S3 client not initialized: %v", err)
		} else {
			storageClient = s3Client
		}
	} else {
		log.Println("Info: object storage not configured, using mock storage")
	}

	// Initialize services
	var analysisService *service.AnalysisService
	if storageClient != nil && openaiClient.IsConfigured() {
		analysisService = service.NewAnalysisService(storageClient, openaiClient)
	}
	uploadService := service.NewUploadService(storageClient, pg)
	roastService := service.NewRoastService(pg, openaiClient, analysisService, service.NewRegexStructurer())
	storyService := service.NewStoryService(pg)
	authService := service.NewAuthService(pg, cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Hour)

	// Initialize handlers
	uploadHandler := handler.NewUploadHandler(uploadService)
	roastHandler := handler.NewRoastHandler(roastService, validate)
	chartHandler := handler.NewChartHandler()
	storyHandler := handler.NewStoryHandler(storyService, validate)
	authHandler := handler.NewAuthHandler(authService, validate, cfg.JWT.Secret)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    service.MaxDeckSize + 1024*1024, // deck ceiling plus multipart overhead
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"postgres":  pg.Ping(c.Context()) == nil,
				"openai":    openaiClient.IsConfigured(),
				"assistant": openaiClient.AssistantConfigured(),
				"storage":   storageClient != nil,
				"analysis":  analysisService.Configured(),
			},
		})
	})

	// Auth routes
	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/verify", authHandler.Verify)

	// API routes - auth is optional, anonymous visitors can roast too
	api := app.Group("/api", authMiddleware.Optional())

	// Upload routes
	upload := api.Group("/upload", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour))
	upload.Post("/deck", uploadHandler.Deck)
	upload.Delete("/deck/:submissionId", uploadHandler.Remove)

	// Roast routes
	api.Post("/roast", rateLimiter.RoastLimit(cfg.RateLimit.RoastPerHour), roastHandler.Roast)
	api.Get("/roast/:submissionId", roastHandler.Get)

	// Chart route
	api.Get("/chart", chartHandler.Get)

	// Story routes
	api.Get("/stories", storyHandler.List)
	api.Post("/stories", rateLimiter.StoryLimit(cfg.RateLimit.StoryPerMin), storyHandler.Create)
	api.Post("/stories/:storyId/like", rateLimiter.StoryLimit(cfg.RateLimit.StoryPerMin), storyHandler.Like)

	// Signup route
	api.Post("/signup", storyHandler.Signup)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
