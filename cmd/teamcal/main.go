package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/auth"
	"github.com/teamcal-dev/teamcal/internal/handlers"
	"github.com/teamcal-dev/teamcal/internal/kakao"
	"github.com/teamcal-dev/teamcal/internal/router"
	"github.com/teamcal-dev/teamcal/internal/scheduler"
	"github.com/teamcal-dev/teamcal/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	handlers.KakaoClient = kakao.NewClient(
		os.Getenv("KAKAO_CLIENT_ID"),
		os.Getenv("KAKAO_CLIENT_SECRET"),
	)
	handlers.Notifier = services.NewNotificationService(
		services.NewGormNotificationStore(db.DB),
		handlers.KakaoClient,
	)

	cleanup := scheduler.NewCleanup()
	cleanup.Start()
	defer cleanup.Stop()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
