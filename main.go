package main

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"provenance-service/config"
	"provenance-service/handlers"
	"provenance-service/openrouter"
	"provenance-service/storage"
)

const (
	EndPointHealth  = "/health"
	EndPointAnalyze = "/api/analyze"
	EndPointExpand  = "/api/expand"
	EndPointScans   = "/api/scans"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	if cfg.OpenRouterAPIKey == "" {
		log.Fatal("OPENROUTER_API_KEY environment variable is required")
	}

	log.Info("Starting the provenance service...")

	// The gateway client is constructed once and holds the credential;
	// handlers receive it by reference and never read process state.
	client := openrouter.NewClient(
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterModel,
		cfg.SiteURL,
		cfg.SiteName,
		cfg.UpstreamTimeout,
	)

	store := storage.NewStore(cfg.HistoryFile, cfg.HistoryLimit)

	// Initialize handlers
	h := handlers.NewHandlers(cfg, client, store)

	// Setup router
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET(EndPointHealth, h.HealthCheck)

	// Provenance endpoints
	router.POST(EndPointAnalyze, h.AnalyzeImage)
	router.POST(EndPointExpand, h.ExpandComponent)

	// Scan history endpoints
	router.GET(EndPointScans, h.ListScans)
	router.DELETE(EndPointScans, h.ClearScans)

	// Start server
	log.Infof("Provenance service starting on port %s", cfg.Port)
	log.Infof("Model: %s, upstream timeout: %s", cfg.OpenRouterModel, cfg.UpstreamTimeout)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
