// Package initializer wires configuration into infrastructure and builds the
// application container.
package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/econbot/infra"
	infrarepo "github.com/amirasaad/econbot/infra/repository"
	currencyfixtures "github.com/amirasaad/econbot/internal/fixtures/currency"
	"github.com/amirasaad/econbot/pkg/app"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Options tune InitializeDependencies.
type Options struct {
	// LogOutput receives log lines; stdout when nil.
	LogOutput io.Writer
}

// InitializeDependencies opens the database, migrates it and builds the
// cache and event bus selected by cfg.
func InitializeDependencies(ctx context.Context, cfg *config.App, opts Options) (deps *app.Deps, err error) {
	logger := setupLogger(cfg.Log, opts.LogOutput)
	deps = &app.Deps{Logger: logger}

	var closers []func()
	deps.Close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			deps.Close()
			deps = nil
		}
	}()

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return deps, err
	}
	closers = append(closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err = infra.Migrate(db); err != nil {
		return deps, fmt.Errorf("failed to migrate database: %w", err)
	}
	deps.Uow = infrarepo.NewUoW(db)

	var client *redis.Client
	if cfg.ExchangeRateCache.Backend == "redis" || cfg.EventBus.Driver == "redis" {
		if client, err = infra.NewRedisClient(cfg.Redis); err != nil {
			return deps, err
		}
		closers = append(closers, func() { _ = client.Close() })
	}

	if deps.RateCache, err = infra.NewExchangeRateCache(cfg.ExchangeRateCache, cfg.Redis.KeyPrefix, client, logger); err != nil {
		return deps, fmt.Errorf("failed to create exchange rate cache: %w", err)
	}

	bus, err := infra.NewEventBus(ctx, cfg.EventBus, client, logger)
	if err != nil {
		return deps, fmt.Errorf("failed to create event bus: %w", err)
	}
	// The bus stops before the connections it reads from.
	closers = append(closers, bus.Close)
	deps.EventBus = bus.Bus
	deps.StartBus = bus.Start

	logger.Info("Dependencies initialized",
		"env", cfg.Env,
		"event_bus", cfg.EventBus.Driver,
		"rate_cache", cfg.ExchangeRateCache.Backend,
	)
	return deps, nil
}

// InitializeApp builds the application and seeds the currency catalog when
// configured to. The rewards policy is activated by app.Start.
func InitializeApp(ctx context.Context, cfg *config.App, opts Options) (*app.App, error) {
	deps, err := InitializeDependencies(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	a := app.New(deps, cfg)
	if err := seedCurrencies(ctx, a, cfg.Fixtures, deps.Logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func seedCurrencies(ctx context.Context, a *app.App, cfg *config.Fixtures, logger *slog.Logger) error {
	if cfg == nil || !cfg.SeedCurrencies {
		return nil
	}
	specs, err := currencyfixtures.LoadCurrencySpecsCSV(cfg.CurrenciesFile)
	if err != nil {
		return fmt.Errorf("failed to load currency fixtures: %w", err)
	}
	logger.Debug("Loading currency fixtures", "to_register", len(specs))
	if _, err := a.SeedCurrencies(ctx, specs); err != nil {
		return fmt.Errorf("failed to seed currencies: %w", err)
	}
	return nil
}
