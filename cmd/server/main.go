// Dealer Vehicle Store API
// @title Dealer Vehicle Store API
// @version 1.0
// @description Read API over the scraped vehicle store, plus a throttled manual refresh
// @host localhost:8080
// @BasePath /

package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	_ "dealerscraper/docs"
	"dealerscraper/internal/config"
	"dealerscraper/internal/database"
	"dealerscraper/internal/fetch"
	"dealerscraper/internal/handlers"
	"dealerscraper/internal/images"
	"dealerscraper/internal/middleware"
	"dealerscraper/internal/scraper"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	// The refresh endpoint drives the same pipeline as the CLI.
	var runner handlers.ScrapeRunner
	if cfg.Scraper.ListingURL != "" {
		fetcher := fetch.New(cfg.Fetch)
		defer fetcher.Close()
		runner = scraper.New(cfg, fetcher, db, images.NewStore(cfg.Fetch), scraper.HyphenMakeResolver)
	}

	r := gin.Default()

	r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	})

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(rate.Limit(10), 20)))

	handler := handlers.NewVehicleHandler(db, runner, cfg.Scraper.Source, cfg.Snapshot.Path)

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/vehicles", handler.ListVehicles)
		api.GET("/vehicles/:id", handler.GetVehicle)
		api.GET("/snapshot-status", handler.SnapshotStatus)
		api.POST("/refresh", middleware.ScrapeProtectionMiddleware(30*time.Minute), handler.Refresh)
		api.GET("/health", handler.Health)
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
