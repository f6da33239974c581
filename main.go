package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/metropass/metropass-backend/database"
	"github.com/metropass/metropass-backend/internal/config"
	"github.com/metropass/metropass-backend/internal/models"
	"github.com/metropass/metropass-backend/internal/routes"
	"github.com/metropass/metropass-backend/internal/services"
	"github.com/metropass/metropass-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize storage
	var store storage.Store
	if cfg.App.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		if err := database.Connect(cfg.Postgres); err != nil {
			log.Fatal(err)
		}

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Station{},
			&models.Line{},
			&models.Connection{},
			&models.Passenger{},
			&models.Ticket{},
			&models.OTPRecord{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Initialize the notification collaborator. Without Twilio credentials
	// the codes go to the process log instead.
	var notifier services.Notifier
	twilioService, err := services.NewTwilioService(cfg.Twilio, int(cfg.OTP.Window/time.Minute))
	if err != nil {
		log.Println("⚠️  Twilio not configured - OTP codes will be logged:", err)
		notifier = services.LogNotifier{}
	} else {
		log.Println("✅ Twilio service initialized")
		notifier = twilioService
	}

	// Initialize core services
	otpService := services.NewOTPService(store, notifier, cfg.OTP.Window)
	ticketService := services.NewTicketService(store, otpService)

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name + " v" + cfg.App.Version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Root endpoint with service status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"status":  "healthy",
			"storage": storageType(cfg),
		}

		if !cfg.App.UseMemoryStore && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var stationCount, lineCount, connectionCount, passengerCount, ticketCount int64
			database.DB.Model(&models.Station{}).Count(&stationCount)
			database.DB.Model(&models.Line{}).Count(&lineCount)
			database.DB.Model(&models.Connection{}).Count(&connectionCount)
			database.DB.Model(&models.Passenger{}).Count(&passengerCount)
			database.DB.Model(&models.Ticket{}).Count(&ticketCount)

			response["database"] = fiber.Map{
				"status":      dbStatus,
				"stations":    stationCount,
				"lines":       lineCount,
				"connections": connectionCount,
				"passengers":  passengerCount,
				"tickets":     ticketCount,
			}
		}

		return c.JSON(response)
	})

	// Setup routes
	routes.SetupRoutes(app, store, ticketService)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚇 %s starting on port %s", cfg.App.Name, cfg.HTTP.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("🔐 OTP window: %s", cfg.OTP.Window)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.HTTP.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.App.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
