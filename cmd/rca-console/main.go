package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codespire/rca-console/internal/cache"
	"github.com/codespire/rca-console/internal/config"
	"github.com/codespire/rca-console/internal/engine"
	"github.com/codespire/rca-console/internal/repo"
	"github.com/codespire/rca-console/internal/services"
	"github.com/codespire/rca-console/internal/utils"
)

type rootOptions struct {
	configPath string
	backendURL string
	logLevel   string
	jsonOutput bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	serve := newServeCommand(opts)

	root := &cobra.Command{
		Use:           "rca-console",
		Short:         "Playbook search and guidance console for incident tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// .env is optional
			_ = godotenv.Load()
			return nil
		},
		RunE: serve.RunE,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&opts.backendURL, "backend-url", "", "playbook backend base URL (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print command results as JSON")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newSearchCommand(opts), newGuidanceCommand(opts), newPlaybooksCommand(opts))
	return root
}

// loadConfig applies CLI flags over the file and environment configuration.
func (o *rootOptions) loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.backendURL != "" {
		cfg.Clients.Backend.BaseURL = o.backendURL
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON), nil
}

// consoleDeps bundles everything built from configuration.
type consoleDeps struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *repo.BackendClient
	console *services.Console
	cache   cache.Provider
}

func (d *consoleDeps) Close() {
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			d.logger.Warn("cache close", slog.Any("error", err))
		}
	}
}

func (o *rootOptions) build(ctx context.Context) (*consoleDeps, error) {
	cfg, logger, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	provider := newCacheProvider(ctx, cfg.Cache, logger)
	backend := repo.NewBackendClient(
		cfg.Clients.Backend.BaseURL,
		cfg.Clients.Backend.Timeout,
		repo.WithCache(provider, cfg.Cache.CatalogTTL),
		repo.WithRateLimit(cfg.Clients.Backend.RateLimit, cfg.Clients.Backend.Burst),
	)

	vocab, err := engine.LoadVocabulary(cfg.Vocabulary.Path, logger)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	console := services.NewConsole(logger, backend, vocab, services.HybridOptions{
		VectorWeight: cfg.Search.HybridVectorWeight,
		TextWeight:   cfg.Search.HybridTextWeight,
		MaxResults:   cfg.Search.HybridMaxResults,
	})
	return &consoleDeps{cfg: cfg, logger: logger, backend: backend, console: console, cache: provider}, nil
}

func newCacheProvider(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) cache.Provider {
	if !cfg.Enabled || cfg.CatalogTTL <= 0 {
		return cache.NoopProvider{}
	}
	if cfg.Driver != config.CacheDriverRedis {
		return cache.NewMemoryProvider()
	}
	provider, err := cache.NewRedisProvider(ctx, cache.RedisConfig{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
		TLS:          cfg.TLS,
	})
	if err != nil {
		logger.Warn("redis cache unavailable, falling back to in-memory cache", slog.Any("error", err))
		return cache.NewMemoryProvider()
	}
	return provider
}
