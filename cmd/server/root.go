package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"silosremeco/backend/internal/cache"
	"silosremeco/backend/internal/config"
	"silosremeco/backend/internal/logger"
	"silosremeco/backend/internal/pricing"
	"silosremeco/backend/internal/service"
	"silosremeco/backend/internal/store"
	"silosremeco/backend/internal/store/memory"
	pgstore "silosremeco/backend/internal/store/postgres"
)

type rootOptions struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "silos",
		Short: "Remeco silos catalog backend",
		Long: `Serves the silo catalog with prices computed from the company's pricing
preferences, the public sitemap and the contact form endpoint.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files merged into the environment")

	serve := newServeCmd(opts)
	root.RunE = serve.RunE
	root.AddCommand(serve, newQuoteCmd(opts), newSitemapCmd(opts))
	return root
}

// load reads the configuration and builds the logger. A non-nil console takes
// the place of stdout so commands that print results keep it clean; file
// sinks are unaffected.
func (o *rootOptions) load(console io.Writer) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logCfg := cfg.Logger()
	logCfg.Console = console
	return cfg, logger.New(logCfg), nil
}

// app holds the collaborators shared by every subcommand.
type app struct {
	repo       store.Repository
	calculator *pricing.Calculator
	formatter  *pricing.Formatter
	catalog    *service.Service
	closers    []func() error
}

func newApp(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*app, error) {
	a := &app{
		calculator: pricing.New(pricing.Options{ApplyTax: cfg.ApplyTax}),
		formatter:  pricing.NewFormatter(cfg.DisplayLocale, cfg.CurrencySymbol),
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(connectCtx, cfg.DatabaseURL, cfg.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
		}
		a.repo = pg
		a.closers = append(a.closers, pg.Close)
		log.WithField("company_id", cfg.CompanyID).Info("repository: postgres")
	} else {
		a.repo = memory.NewSeeded()
		log.Info("repository: in-memory")
	}

	catalogCache := cache.CatalogCache(cache.NoopCatalogCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCatalogCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(connectCtx); err != nil {
			log.WithError(err).Warn("redis unavailable, using noop catalog cache")
			_ = redisCache.Close()
		} else {
			catalogCache = redisCache
			a.closers = append(a.closers, redisCache.Close)
			log.Info("catalog cache: redis")
		}
	} else {
		log.Info("catalog cache: noop")
	}

	prefs := cache.NewPreferencesCache(a.repo, cfg.PreferencesTTL())
	a.catalog = service.New(a.repo, prefs, a.calculator,
		service.WithCatalogCache(catalogCache, cfg.CatalogCacheTTL()),
		service.WithLogger(log),
	)
	return a, nil
}

func (a *app) Close(log logrus.FieldLogger) {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.WithError(err).Warn("close error")
		}
	}
}
