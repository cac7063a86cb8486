package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/netmon"
	"storefront/internal/remote"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/seed"
	"storefront/internal/service"
	"storefront/internal/subscription"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the local catalogue cache
	store, err := repository.New(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize catalogue store: %w", err)
	}
	defer store.Close()

	if cfg.Seed.Enabled {
		loader := seed.NewLoader(ctx, cfg.Seed, logger)
		if _, err := seed.Bootstrap(ctx, loader, store, cfg.Seed.Path, logger); err != nil {
			logger.Warn().Err(err).Msg("failed to seed catalogue cache, continuing with current contents")
		}
	}

	m := metrics.New()
	rc := remote.New(cfg.Remote, logger)

	checker := netmon.NewChecker(netmon.CheckerConfig{
		URL:      cfg.Sync.CheckURL,
		Interval: cfg.Sync.CheckInterval,
		Timeout:  cfg.Sync.CheckTimeout,
	}, logger)
	m.SetOnline(checker.Check(ctx))

	synchronizer := catalog.New(rc, store, checker, catalog.Config{
		PageSize: cfg.Sync.PageSize,
		Observer: m,
	}, logger)

	go trackConnectivity(ctx, checker, m)
	go func() {
		if err := synchronizer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("catalogue synchroniser stopped")
		}
	}()
	go checker.Run(ctx)

	initialRefresh(ctx, synchronizer, logger)

	// Initialize services
	c := cart.New(logger)
	planner := subscription.NewPlanner(logger)

	productService := service.NewProductService(synchronizer, store, rc, checker, logger)
	cartService := service.NewCartService(c, productService, logger)
	subscriptionService := service.NewSubscriptionService(planner, logger)
	orderService := service.NewOrderService(c, subscriptionService, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product:      handler.NewProductHandler(productService, logger),
		Cart:         handler.NewCartHandler(cartService, logger),
		Subscription: handler.NewSubscriptionHandler(subscriptionService, logger),
		Order:        handler.NewOrderHandler(orderService, logger),
	}, router.Options{
		APIKey:  cfg.Auth.APIKey,
		Metrics: m,
		Online:  checker.Online,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Remote.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop background probing and synchronisation first
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

type refresher interface {
	Refresh(ctx context.Context) (model.CatalogView, error)
}

// initialRefresh loads the first page. A refresh already started by a
// connectivity change is left to finish.
func initialRefresh(ctx context.Context, r refresher, logger zerolog.Logger) {
	view, err := r.Refresh(ctx)
	switch {
	case errors.Is(err, model.ErrLoadInFlight):
		logger.Debug().Msg("catalogue already loading, skipping initial refresh")
	case err != nil:
		logger.Error().Err(err).Msg("initial catalogue refresh failed")
	default:
		logger.Info().
			Int("products", len(view.Products)).
			Int("total", view.Total).
			Bool("online", view.Online).
			Msg("initial catalogue loaded")
	}
}

// trackConnectivity mirrors reachability transitions into the online gauge.
func trackConnectivity(ctx context.Context, monitor netmon.Monitor, m *metrics.Metrics) {
	events, unsubscribe := monitor.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-events:
			if !ok {
				return
			}
			m.SetOnline(online)
		}
	}
}
