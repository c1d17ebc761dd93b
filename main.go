package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"dulcino/internal/handlers"
	"dulcino/internal/models"
	"dulcino/internal/repositories"
	"dulcino/internal/services"
	"dulcino/internal/validation"
	"dulcino/pkg/rabbitmq"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// defaultCategories is the Dulcino confectionery vocabulary. It is plain
// configuration data: override ALLOWED_CATEGORIES to run the same code with a
// different vocabulary.
var defaultCategories = []string{
	"Chocolates", "Caramelos", "Mashmelos",
	"Galletas", "Salados", "Gomas de mascar",
}

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables.
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("STORE_BACKEND", "csv")
	viper.SetDefault("CSV_PATH", "data/products.csv")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("ALLOWED_CATEGORIES", defaultCategories)
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")

	// --- Initialize Store ---
	// The store is constructed once here and passed down explicitly; nothing
	// else in the system holds a backend handle.
	productRepo, err := buildProductRepository()
	if err != nil {
		log.Fatalf("Failed to initialize product store: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// Product lifecycle events are only published when a broker URL is
	// configured; an empty URL disables the publisher entirely.
	var publisher services.EventPublisher
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		publisher = mqClient
	}

	// --- Initialize Validator ---
	productValidator := validation.New(viper.GetStringSlice("ALLOWED_CATEGORIES"))

	// --- Initialize Service and Handler ---
	productService := services.NewProductService(productRepo, productValidator, publisher)
	productHandler := handlers.NewProductHandler(productService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// buildProductRepository selects the persistence backend from configuration.
// "csv" rewrites a local tabular file on every mutation, "postgres" keeps one
// row per product in a remote table, and "memory" is a non-durable fallback
// for local experiments. All three expose the same contract.
func buildProductRepository() (repositories.ProductRepository, error) {
	backend := viper.GetString("STORE_BACKEND")
	switch backend {
	case "csv":
		path := viper.GetString("CSV_PATH")
		log.Printf("Using CSV store at %s", path)
		return repositories.NewCSVProductRepository(path), nil
	case "postgres":
		dsn := viper.GetString("DATABASE_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres backend")
		}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, fmt.Errorf("failed to migrate products table: %w", err)
		}
		log.Println("Using PostgreSQL store")
		return repositories.NewGORMProductRepository(db), nil
	case "memory":
		log.Println("Using in-memory store (data is lost on shutdown)")
		return repositories.NewMemoryProductRepository(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (expected csv, postgres or memory)", backend)
	}
}
