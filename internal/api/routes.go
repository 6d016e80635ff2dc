package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardfolio/cardfolio/backend/internal/api/handlers"
	"github.com/cardfolio/cardfolio/backend/internal/auth"
	"github.com/cardfolio/cardfolio/backend/internal/config"
	"github.com/cardfolio/cardfolio/backend/internal/services"
)

// RouterDeps carries everything the HTTP layer needs
type RouterDeps struct {
	Config       *config.Config
	Verifier     auth.Verifier
	Catalog      *services.CatalogService
	SyncService  *services.SyncService
	PriceService *services.PriceService
	PriceWorker  *services.PriceWorker
	SearchCache  *services.SearchCache
}

func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	corsConfig := cors.DefaultConfig()
	if deps.Config.CORSAllowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(deps.Config.CORSAllowedOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	router.Use(MetricsMiddleware())

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(deps.Catalog, deps.PriceService, deps.PriceWorker, deps.SearchCache)
	priceHandler := handlers.NewPriceHandler(deps.PriceWorker, deps.PriceService)
	portfolioHandler := handlers.NewPortfolioHandler(deps.PriceService, deps.PriceWorker, CurrentUserID)
	watchlistHandler := handlers.NewWatchlistHandler(deps.PriceService, CurrentUserID)
	syncHandler := handlers.NewSyncHandler(deps.SyncService, deps.Config.SyncCardLimit)
	gradingHandler := handlers.NewGradingHandler()
	userHandler := handlers.NewUserHandler(CurrentUserID)

	requireUser := AuthMiddleware(deps.Verifier)

	// API routes
	api := router.Group("/api")
	{
		// Card routes
		api.GET("/sets", cardHandler.GetSets)

		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/:id", cardHandler.GetCard)
			cards.GET("/:id/prices", priceHandler.GetCardPrices)
			cards.GET("/:id/history", priceHandler.GetCardHistory)
			cards.POST("/:id/refresh-price", priceHandler.RefreshCardPrice)
			cards.POST("/:id/queue-refresh", priceHandler.QueueRefresh)
		}

		// Portfolio routes
		portfolio := api.Group("/portfolio", requireUser)
		{
			portfolio.GET("", portfolioHandler.GetPortfolio)
			portfolio.POST("", portfolioHandler.AddEntry)
			portfolio.PUT("/:id", portfolioHandler.UpdateEntry)
			portfolio.DELETE("/:id", portfolioHandler.DeleteEntry)
			portfolio.GET("/stats", portfolioHandler.GetStats)
			portfolio.GET("/history", portfolioHandler.GetValueHistory)
			portfolio.GET("/export", portfolioHandler.ExportCSV)
			portfolio.POST("/import", portfolioHandler.ImportCSV)
			portfolio.POST("/refresh-prices", portfolioHandler.RefreshPrices)
		}

		// Watchlist routes
		watchlist := api.Group("/watchlist", requireUser)
		{
			watchlist.GET("", watchlistHandler.GetWatchlist)
			watchlist.POST("", watchlistHandler.AddEntry)
			watchlist.PUT("/:id", watchlistHandler.UpdateEntry)
			watchlist.DELETE("/:id", watchlistHandler.DeleteEntry)
			watchlist.GET("/alerts", watchlistHandler.GetAlerts)
		}

		// Price routes
		prices := api.Group("/prices")
		{
			prices.GET("/status", priceHandler.GetPriceStatus)
		}

		// Sync routes
		sync := api.Group("/sync")
		{
			sync.POST("/sets", syncHandler.SyncSets)
			sync.POST("/pricing", syncHandler.SyncPricing)
		}

		// Calculator routes
		api.GET("/grading/estimate", gradingHandler.EstimateCost)
		api.POST("/casecracker/ev", gradingHandler.CaseEV)

		// User settings routes
		settings := api.Group("", requireUser)
		{
			settings.GET("/preferences", userHandler.GetPreferences)
			settings.PUT("/preferences", userHandler.UpdatePreferences)
			settings.GET("/keys", userHandler.GetAPIKeys)
			settings.POST("/keys", userHandler.UpsertAPIKey)
			settings.DELETE("/keys/:provider", userHandler.DeleteAPIKey)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
