package app

import (
	"context"
	"errors"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/policy"
)

// LoadPolicy activates the configured rewards policy file, or the embedded
// default policy when none is configured.
func (a *App) LoadPolicy() error {
	if path := a.Config.Rewards.PolicyFile; path != "" {
		return a.Rewards.LoadFile(path)
	}
	return a.Rewards.Load(policy.DefaultSource)
}

// SeedCurrencies adds specs when no currency exists yet and returns how many
// were added.
func (a *App) SeedCurrencies(ctx context.Context, specs []currency.Spec) (int, error) {
	existing, err := a.CurrencyService.List(ctx)
	if err != nil {
		return 0, err
	}
	log := a.Deps.Logger.With("component", "fixtures")
	if len(existing) > 0 {
		log.Info("Skipping currency fixtures load; catalog not empty", "existing_count", len(existing))
		return 0, nil
	}
	added := 0
	for _, spec := range specs {
		if _, err := a.CurrencyService.Add(ctx, spec); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return added, err
		}
		added++
	}
	log.Info("Successfully loaded currency fixtures", "registered_count", added)
	return added, nil
}

// Start activates the policy and starts consuming events.
func (a *App) Start(ctx context.Context) error {
	if err := a.LoadPolicy(); err != nil {
		return err
	}
	if a.Deps.StartBus != nil {
		a.Deps.StartBus(ctx)
	}
	return nil
}
