package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"             // structured logging for the negotiation engine

	"github.com/iliyamo/ticket-marketplace/internal/config"     // Internal config loader
	"github.com/iliyamo/ticket-marketplace/internal/database"   // MySQL connection helper
	"github.com/iliyamo/ticket-marketplace/internal/handler"    // HTTP handlers
	"github.com/iliyamo/ticket-marketplace/internal/middleware" // cache + rate limit middleware
	"github.com/iliyamo/ticket-marketplace/internal/proposal"   // OpenRouter proposal backend
	"github.com/iliyamo/ticket-marketplace/internal/queue"      // settlement event consumer
	"github.com/iliyamo/ticket-marketplace/internal/repository" // DB repositories
	"github.com/iliyamo/ticket-marketplace/internal/router"     // route registration
)

func main() {
	// Load a local .env if present; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Structured logger used by the negotiation engine and resolver.
	logger, err := zap.NewProduction()
	if cfg.Env == "dev" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Connect to MySQL and verify the connection before serving traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	parties := repository.NewPartyRepo(db)
	events := repository.NewEventRepo(db)
	venues := repository.NewVenueRepo(db)
	tickets := repository.NewTicketRepo(db)
	bids := repository.NewBidRepo(db)
	pairs := repository.NewPairRepo(db)
	transactions := repository.NewTransactionRepo(db)

	// Proposal backend. One client serves both offer generation and
	// buyer intent extraction.
	openrouter := proposal.NewOpenRouter(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel)

	// Handlers.
	auth := handler.NewAuthHandler(cfg, users, tokens, parties)
	bidH := handler.NewBidHandler(bids, events)
	ticketH := handler.NewTicketHandler(tickets, events, venues)
	public := &handler.PublicHandler{Events: events, Venues: venues, Tickets: tickets}
	intent := handler.NewIntentHandler(openrouter, logger)
	catalog := handler.NewCatalogHandler(events, venues)
	marketH := &handler.MarketHandler{
		Cfg:          cfg,
		Bids:         bids,
		Tickets:      tickets,
		Events:       events,
		Venues:       venues,
		Pairs:        pairs,
		Transactions: transactions,
		Proposals:    openrouter,
		Logger:       logger,
	}

	// Background consumer that mirrors settlement events into
	// logs/settlement.log. Runs its own reconnect loop.
	go func() {
		if err := queue.StartSettlementConsumer(); err != nil {
			log.Printf("settlement consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance

	// Redis-backed rate limiting and response caching. When Redis is
	// unavailable both are disabled and the API serves uncached.
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	// Register application routes.
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, public)
	router.RegisterMarket(e, bidH, ticketH, marketH, intent, catalog, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
