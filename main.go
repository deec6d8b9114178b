package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"fortune0-platform/handlers"
	"fortune0-platform/models"
	"fortune0-platform/services"
	"fortune0-platform/utils"
	"fortune0-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "fortune0",
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default:", allowedOrigins)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(splitAndTrim(allowedOrigins), ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Webhook-Signature, Stripe-Signature",
	}))

	db, err := openDatabase()
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Affiliate{},
		&models.Commission{},
		&models.Session{},
		&models.ReferralClick{},
		&models.Activity{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	schedule, err := services.LoadFeeSchedule()
	if err != nil {
		log.Fatal("invalid fee schedule:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize snapshot storage:", err)
	}

	accountService := services.NewAccountService(db)
	sessionService := services.NewSessionService(db)
	affiliateService := services.NewAffiliateService(db)
	commissionService := services.NewCommissionService(db, schedule)

	handlers.SetupAccountRoutes(app, accountService, sessionService)
	handlers.SetupAffiliateRoutes(app, affiliateService, accountService, sessionService, commissionService)
	handlers.SetupWebhookRoutes(app, commissionService)

	workers.StartSessionSweeper(sessionService)
	workers.StartSnapshotWorker(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ fortune0 platform running on http://localhost:%s", port)
	log.Printf("✅ Fee schedule loaded: %d tiers", len(schedule.Tiers()))

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

// openDatabase picks Postgres when DATABASE_URL is set (production) and
// falls back to a local SQLite file otherwise. TranslateError is on so the
// unique-violation that backs order idempotency surfaces the same way on
// both drivers.
func openDatabase() (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = filepath.Join("data", "fortune0.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	log.Printf("⚠️  DATABASE_URL not set, using SQLite at %s", path)
	return gorm.Open(sqlite.Open(path), cfg)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
