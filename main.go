package main

import (
	"log"
	"net/http"
	"time"

	"github.com/GenanawMekete/final-bingo/config"
	"github.com/GenanawMekete/final-bingo/game"
	"github.com/GenanawMekete/final-bingo/routes"
	"github.com/GenanawMekete/final-bingo/services"
	"github.com/GenanawMekete/final-bingo/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// settingsFrom maps the env config onto the session engine tunables.
func settingsFrom(cfg config.Config) game.Settings {
	settings := game.DefaultSettings()
	settings.PoolSize = cfg.CardPoolSize
	settings.MaxPlayers = cfg.MaxPlayers
	settings.CallInterval = cfg.CallInterval
	settings.PoolExclusive = cfg.PoolExclusive
	settings.WinAward = cfg.WinAward
	if cfg.ClaimPolicy == config.ClaimPolicyAuto {
		settings.ClaimPolicy = game.ServerAutoVerification
	}
	return settings
}

// setupRouter initializes Gin routes and middleware
func setupRouter(handler *services.SessionHandler) *gin.Engine {
	r := gin.Default()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket session endpoint
	r.GET("/ws", handler.Handle)

	return r
}

func main() {
	// Load env variables
	cfg := config.Load()

	// Connect to database
	db := config.SetupDatabase(cfg.DatabaseURL)

	// Collaborators and the in-memory session engine
	ledger := store.NewLedger(db)
	archive := store.NewArchive(db)
	profiles := store.NewProfileStore(db)

	registry := game.NewRegistry(settingsFrom(cfg), ledger, archive)
	go registry.Run()

	gateway := services.NewGateway(registry)
	handler := services.NewSessionHandler(gateway, profiles)

	router := setupRouter(handler)

	log.Printf("🚀 Bingo server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
