package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/kaspervae/verdandi/internal"
	"github.com/kaspervae/verdandi/internal/auth"
	"github.com/kaspervae/verdandi/internal/cookie"
	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/kaspervae/verdandi/internal/gateway"
	"github.com/kaspervae/verdandi/internal/guestcart"
	"github.com/kaspervae/verdandi/internal/handler/storefront"
	"github.com/kaspervae/verdandi/internal/middleware"
	"github.com/kaspervae/verdandi/internal/router"
	"github.com/kaspervae/verdandi/internal/routes"
	"github.com/kaspervae/verdandi/internal/service"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Gateway client
	gw := gateway.NewClient(cfg.Gateway.URL, logger)

	// Guest cart store
	var guestStore guestcart.Store
	switch cfg.Guest.Provider {
	case "redis":
		logger.Info("Using Redis guest cart store", "addr", cfg.Guest.RedisAddr)
		client := redis.NewClient(&redis.Options{Addr: cfg.Guest.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		guestStore = guestcart.NewRedisStore(client)
	default:
		logger.Info("Using local guest cart store", "path", cfg.Guest.LocalPath)
		guestStore, err = guestcart.NewFileStore(cfg.Guest.LocalPath)
		if err != nil {
			return fmt.Errorf("guest cart store initialization failed: %w", err)
		}
	}

	// State store and checkout service
	store := service.NewStore(gw, logger)
	checkoutService := service.NewCheckoutService(store, cfg.PricingOptions(), logger)

	// Identity provider; its session changes drive the store.
	provider := auth.NewRESTProvider(cfg.Auth.URL, cfg.Auth.APIKey, logger)
	provider.Subscribe(func(session domain.Session) {
		if err := store.OnSessionChange(context.Background(), session); err != nil {
			logger.Error("session change handling failed", "error", err)
		}
	})

	// Initial catalog load; the server still starts when the gateway is
	// down and retries on the next page view.
	if err := store.LoadCatalog(ctx); err != nil {
		logger.Warn("initial catalog load failed", "error", err)
	}

	// Build route dependencies
	base := &storefront.Base{
		Store:   store,
		Guest:   guestStore,
		Pricing: cfg.PricingOptions(),
		Cookies: cookie.NewConfig(cfg.Env == "prod"),
		Logger:  logger,
	}
	storefrontDeps := routes.StorefrontDeps{
		Pages:    storefront.NewPagesHandler(base),
		Products: storefront.NewProductHandler(base),
		Cart:     storefront.NewCartHandler(base),
		Checkout: storefront.NewCheckoutHandler(base, checkoutService),
		Orders:   storefront.NewOrderHandler(base),
		Auth:     storefront.NewAuthHandler(base, provider),
	}

	// Prometheus metrics
	metrics := middleware.NewMetrics("verdandi")

	// Router and routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.Logger(logger),
	)

	r.Static("/static/", "./web/static")

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterStorefrontRoutes(r, storefrontDeps)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting storefront server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
