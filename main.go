package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiss-tournament/config"
	"swiss-tournament/handlers"
	"swiss-tournament/middleware"
	"swiss-tournament/services"
	"swiss-tournament/utils"
	"swiss-tournament/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := services.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	tournamentService := services.NewTournamentService(db)
	pairingService := services.NewPairingService(tournamentService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		snapshots := workers.NewSnapshotWorker(tournamentService, r2)
		if err := snapshots.Start(ctx, cfg.SnapshotInterval); err != nil {
			log.Fatal("failed to start snapshot worker:", err)
		}
		log.Printf("✅ Standings snapshots every %s to bucket %s", cfg.SnapshotInterval, cfg.R2.Bucket)
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set, standings snapshots disabled")
	}

	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  "GET,POST,DELETE,OPTIONS,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID, Cache-Control",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400, // 24 hours
	}))

	handlers.SetupTournamentRoutes(app, tournamentService, pairingService, cfg.AdminToken)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
