// sync seeds or refreshes the local card catalog from the upstream sources
// without running the full server.
//
// Usage: go run ./cmd/sync -db=<path> [-set=<id>] [-limit=N] [-pricing]
//
// With no -set it syncs the set list only. With -set it also pulls that
// set's cards. With -pricing it refreshes pricing for every card already
// referenced by a portfolio or watchlist.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cardfolio/cardfolio/backend/internal/config"
	"github.com/cardfolio/cardfolio/backend/internal/database"
	"github.com/cardfolio/cardfolio/backend/internal/models"
	"github.com/cardfolio/cardfolio/backend/internal/services"
)

func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "Path to SQLite database")
	setID := flag.String("set", "", "Set ID to sync cards for")
	limit := flag.Int("limit", cfg.SyncCardLimit, "Max cards to sync per set")
	pricing := flag.Bool("pricing", false, "Refresh pricing for tracked cards")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall deadline")
	flag.Parse()

	if err := database.Initialize(*dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	catalogService := services.NewCatalogService(cfg.CatalogAPIKey)
	priceTrackerService := services.NewPriceTrackerService(cfg.PriceTrackerAPIKey)
	justTCGService := services.NewJustTCGService(cfg.JustTCGAPIKey, cfg.JustTCGDailyLimit)

	syncService := services.NewSyncService(db, catalogService,
		catalogService, priceTrackerService, justTCGService)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	setCount, err := syncService.SyncSets(ctx)
	if err != nil {
		log.Fatalf("Set sync failed: %v", err)
	}
	fmt.Printf("Synced %d sets\n", setCount)

	if *setID != "" {
		cardCount, err := syncService.SyncCardsForSet(ctx, *setID, *limit)
		if err != nil {
			log.Fatalf("Card sync failed for set %s: %v", *setID, err)
		}
		fmt.Printf("Synced %d cards for set %s\n", cardCount, *setID)
	}

	if !*pricing {
		return
	}

	var cardIDs []string
	err = db.Model(&models.Card{}).
		Where("id IN (?)", db.Model(&models.PortfolioEntry{}).Distinct("card_id")).
		Or("id IN (?)", db.Model(&models.WatchlistEntry{}).Distinct("card_id")).
		Pluck("id", &cardIDs).Error
	if err != nil {
		log.Fatalf("Failed to collect tracked cards: %v", err)
	}

	priced := 0
	failed := 0
	for _, id := range cardIDs {
		var card models.Card
		if err := db.First(&card, "id = ?", id).Error; err != nil {
			continue
		}
		if _, err := syncService.SyncPricingForCard(ctx, card.ID, card.Name, card.SetName); err != nil {
			log.Printf("Pricing failed for %s (%s): %v", card.Name, card.ID, err)
			failed++
			continue
		}
		priced++
	}
	fmt.Printf("Priced %d/%d tracked cards (%d failures)\n", priced, len(cardIDs), failed)

	if failed > 0 {
		os.Exit(1)
	}
}
