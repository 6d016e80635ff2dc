package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardfolio/cardfolio/backend/internal/api"
	"github.com/cardfolio/cardfolio/backend/internal/auth"
	"github.com/cardfolio/cardfolio/backend/internal/config"
	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	// Upstream pricing sources. Catalog is always available; the graded
	// and JustTCG sources drop out when their keys are missing.
	catalogService := services.NewCatalogService(cfg.CatalogAPIKey)
	priceTrackerService := services.NewPriceTrackerService(cfg.PriceTrackerAPIKey)
	justTCGService := services.NewJustTCGService(cfg.JustTCGAPIKey, cfg.JustTCGDailyLimit)

	// Source order is merge priority: later sources win per field
	syncService := services.NewSyncService(db, catalogService,
		catalogService, priceTrackerService, justTCGService)

	priceService := services.NewPriceService(db, justTCGService)

	interval := time.Duration(cfg.PriceUpdateIntervalMinutes) * time.Minute
	priceWorker := services.NewPriceWorker(db, syncService, priceService, interval)

	scheduler := services.NewScheduler(db, priceService)

	searchCache, err := services.NewSearchCache()
	if err != nil {
		log.Fatalf("Failed to initialize search cache: %v", err)
	}

	// Auth provider. No AUTH_URL means demo mode with a fixed user.
	var verifier auth.Verifier
	if cfg.AuthURL != "" {
		verifier = auth.NewHTTPVerifier(cfg.AuthURL, cfg.AuthAPIKey)
		log.Printf("Auth enabled via %s", cfg.AuthURL)
	} else {
		log.Println("AUTH_URL not set - running in demo mode with a single local user")
	}

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start price worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in price worker: %v - restarting in 30 seconds", r)
					}
				}()
				priceWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return
			case <-time.After(30 * time.Second):
				log.Println("Price worker restarting after panic recovery...")
			}
		}
	}()

	// Start the cron scheduler (alerts, snapshots, trending)
	go scheduler.Start(ctx)

	// Setup router
	router := api.SetupRouter(api.RouterDeps{
		Config:       &cfg,
		Verifier:     verifier,
		Catalog:      catalogService,
		SyncService:  syncService,
		PriceService: priceService,
		PriceWorker:  priceWorker,
		SearchCache:  searchCache,
	})

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the worker and scheduler
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
