package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chirp/internal/config"
	"chirp/internal/handlers"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repositories"
	"chirp/internal/services"
	"chirp/pkg/logger"
	"chirp/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// --- Logger ---
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	// --- Repositories ---
	// A configured DSN selects Postgres; otherwise the in-memory store is
	// used, which is enough for local development.
	var (
		userRepo repositories.UserRepository
		postRepo repositories.PostRepository
	)
	if cfg.DatabaseDSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
		userRepo = repositories.NewGORMUserRepository(db)
		postRepo = repositories.NewGORMPostRepository(db)
	} else {
		log.Warn("DATABASE_DSN not set, using in-memory store")
		memUsers := repositories.NewMockUserRepository()
		userRepo = memUsers
		postRepo = repositories.NewMockPostRepository(memUsers)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
	}

	// --- Services ---
	authService, err := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL, log)
	if err != nil {
		log.Fatal("failed to initialize auth service", zap.Error(err))
	}
	postService := services.NewPostService(postRepo, mqClient, log)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, log)
	postHandler := handlers.NewPostHandler(postService, log)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(fiberlogger.New())

	apiV1 := app.Group("/api/v1")

	// Public routes: registration and login.
	authHandler.RegisterRoutes(apiV1)

	// Everything else requires a bearer token.
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	postHandler.RegisterRoutes(protected)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Post-event consumer ---
	if mqClient != nil {
		go func() {
			log.Info("starting RabbitMQ consumer for post events")
			messageHandler := func(msg amqp.Delivery) error {
				log.Info("received post event",
					zap.Uint64("delivery_tag", msg.DeliveryTag),
					zap.ByteString("body", msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumePostEvents(messageHandler); consumerErr != nil {
				log.Error("failed to start RabbitMQ consumer", zap.Error(consumerErr))
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Info("starting server", zap.String("port", cfg.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}
