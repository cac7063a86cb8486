// Package cmd implements the storefront operator CLI.
package cmd

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/netmon"
	"storefront/internal/remote"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile string
	offline bool
	apiURL  string
	debug   bool
}

// app holds the components a command works with. Each command opens its
// own app and closes it when done.
type app struct {
	cfg          *config.Config
	logger       zerolog.Logger
	store        repository.CatalogRepository
	monitor      netmon.Monitor
	synchronizer *catalog.Synchronizer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront catalogue operator CLI",
		Long: `storefront inspects and maintains the offline-first product catalogue.

It fetches pages from the remote catalogue API, keeps the local cache in
step and falls back to cached products when the network is unavailable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "treat the remote catalogue as unreachable")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "remote catalogue base URL")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newCatalogCmd(opts),
		newCacheCmd(opts),
		newPlansCmd(),
	)

	return rootCmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.cfgFile != "" {
		if err := cfg.ApplyFile(o.cfgFile); err != nil {
			return nil, err
		}
	}

	if o.apiURL != "" {
		cfg.Remote.BaseURL = o.apiURL
		cfg.Sync.CheckURL = o.apiURL
	}

	return cfg, nil
}

// openApp loads configuration and opens the store. The remote catalogue
// is checked once unless --offline is set.
func (o *options) openApp(ctx context.Context) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	level := "warn"
	if o.debug {
		level = "debug"
	}
	logger := config.NewLoggerTo(os.Stderr, config.LoggerConfig{Level: level, Format: "console"})

	store, err := repository.New(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue store: %w", err)
	}

	var monitor netmon.Monitor
	if o.offline {
		monitor = netmon.NewManual(false)
	} else {
		checker := netmon.NewChecker(netmon.CheckerConfig{
			URL:     cfg.Sync.CheckURL,
			Timeout: cfg.Sync.CheckTimeout,
		}, logger)
		checker.Check(ctx)
		monitor = checker
	}

	synchronizer := catalog.New(remote.New(cfg.Remote, logger), store, monitor, catalog.Config{
		PageSize: cfg.Sync.PageSize,
	}, logger)

	return &app{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		monitor:      monitor,
		synchronizer: synchronizer,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close catalogue store")
	}
}
