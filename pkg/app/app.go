// Package app holds the service container built once at start: the economy
// services and the rewards engine, sharing one unit of work and one event
// bus.
package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/econbot/pkg/cache"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/amirasaad/econbot/pkg/eventbus"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/amirasaad/econbot/pkg/rewards"
	currencysvc "github.com/amirasaad/econbot/pkg/service/currency"
	"github.com/amirasaad/econbot/pkg/service/gambling"
	"github.com/amirasaad/econbot/pkg/service/ledger"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow       repository.UnitOfWork
	RateCache cache.ExchangeRateCache
	EventBus  eventbus.Bus
	Logger    *slog.Logger

	// StartBus starts consuming from an external event transport. It is a
	// no-op for in-process buses.
	StartBus func(ctx context.Context)
	// Close releases connections and stops the bus.
	Close func()
}

type App struct {
	Deps            *Deps
	Config          *config.App
	CurrencyService *currencysvc.Service
	LedgerService   *ledger.Service
	GamblingService *gambling.Service
	Rewards         *rewards.Engine
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.CurrencyService = currencysvc.New(deps.Uow, deps.RateCache, cfg.ExchangeRateCache.TTL, deps.Logger)
	app.LedgerService = ledger.New(deps.Uow, deps.Logger)
	app.GamblingService = gambling.New(app.CurrencyService, app.LedgerService, nil, deps.Logger)
	app.Rewards = rewards.New(
		deps.EventBus,
		app.CurrencyService,
		app.LedgerService,
		rewards.Config{
			CommandPrefix: cfg.Bot.CommandPrefix,
			BotUserID:     cfg.Bot.UserID,
		},
		deps.Logger,
	)
	return app
}

// Close releases the infrastructure.
func (a *App) Close() {
	if a.Deps.Close != nil {
		a.Deps.Close()
	}
}
