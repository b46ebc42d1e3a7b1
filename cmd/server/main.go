package main

import (
	"log"
	"net/http"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/router"
	"inkwell/internal/storage"
	"inkwell/internal/storage/inmemory"
	"inkwell/internal/storage/postgres"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.Storage
	switch cfg.StorageDriver {
	case "memory":
		store = inmemory.New()
		log.Println("Using in-memory storage")
	default:
		pg, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect database: %v", err)
		}
		store = pg
	}

	r := router.New(cfg, store)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
