package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"word-stats-system/handlers"
	"word-stats-system/models"
	"word-stats-system/services"
	"word-stats-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origins = append(origins, strings.TrimSpace(origin))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.PlayRecord{},
		&models.RollingStat{},
		&models.BestEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ledgerService := services.NewLedgerService(db)
	sessionService, err := services.NewSessionService(db, ledgerService, services.DefaultConfig())
	if err != nil {
		log.Fatal("invalid stats configuration:", err)
	}
	leaderboardService := services.NewLeaderboardService(db)
	playService := services.NewPlayService(db)
	statsService := services.NewStatsService(db)

	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("STATS_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("STATS_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewUserSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)
	syncWorker.Start(ctx)
	workers.StartSessionReaper(db)

	handlers.SetupSessionRoutes(app, sessionService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupPlayRoutes(app, playService)
	handlers.SetupStatsRoutes(app, statsService, ledgerService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Printf("CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
