// Package currency provides the currency catalog: administration of
// user-defined currencies, resolution of free-text amounts and exchange
// rates between currencies.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/amirasaad/econbot/pkg/cache"
	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/parser"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultRateTTL is used when New is given a non-positive ttl.
const DefaultRateTTL = 15 * time.Minute

// Service provides business logic for currencies and exchange rates.
type Service struct {
	uow      repository.UnitOfWork
	rates    cache.ExchangeRateCache
	ttl      time.Duration
	inflight singleflight.Group
	logger   *slog.Logger
}

// New creates a currency Service. rates may be nil, in which case every
// rate lookup reads the database.
func New(
	uow repository.UnitOfWork,
	rates cache.ExchangeRateCache,
	ttl time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	return &Service{
		uow:    uow,
		rates:  rates,
		ttl:    ttl,
		logger: logger.With("service", "Currency"),
	}
}

// Add validates spec and stores a new currency.
func (s *Service) Add(ctx context.Context, spec currency.Spec) (c *currency.Currency, err error) {
	if err = parser.ValidateSpec(spec); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CurrencyRepository()
		if err != nil {
			return err
		}
		if err := checkUnits(ctx, repo, spec, nil); err != nil {
			return err
		}
		c = currency.New(spec)
		return repo.Create(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("add currency %s: %w", spec.Symbol, err)
	}
	s.logger.Info("currency added", "symbol", c.Symbol, "name", c.Name, "denominations", len(c.Denominations))
	return c, nil
}

// AddFromText parses a currency spec and adds it.
func (s *Service) AddFromText(ctx context.Context, text string) (*currency.Currency, error) {
	spec, err := parser.ParseSpec(text)
	if err != nil {
		return nil, err
	}
	return s.Add(ctx, spec)
}

// Update replaces the currency known by symbol with spec, including its whole
// denomination set.
func (s *Service) Update(ctx context.Context, symbol string, spec currency.Spec) (c *currency.Currency, err error) {
	if err = parser.ValidateSpec(spec); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CurrencyRepository()
		if err != nil {
			return err
		}
		if c, err = repo.GetBySymbol(ctx, symbol); err != nil {
			return err
		}
		if err := checkUnits(ctx, repo, spec, c); err != nil {
			return err
		}
		c.Apply(spec)
		return repo.Update(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("update currency %s: %w", symbol, err)
	}
	s.invalidate(ctx, symbol, c.Symbol)
	s.logger.Info("currency updated", "symbol", symbol, "new_symbol", c.Symbol)
	return c, nil
}

// UpdateFromText parses a currency spec and applies it to symbol.
func (s *Service) UpdateFromText(ctx context.Context, symbol, text string) (*currency.Currency, error) {
	spec, err := parser.ParseSpec(text)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, symbol, spec)
}

// Delete removes the currency, its denominations and every balance holding
// it. Transaction and reward logs are kept.
func (s *Service) Delete(ctx context.Context, symbol string) error {
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.CurrencyRepository()
		if err != nil {
			return err
		}
		c, err := repo.GetBySymbol(ctx, symbol)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, c.ID)
	})
	if err != nil {
		return fmt.Errorf("delete currency %s: %w", symbol, err)
	}
	s.invalidate(ctx, symbol)
	s.logger.Info("currency deleted", "symbol", symbol)
	return nil
}

// Get returns the currency with the given symbol.
func (s *Service) Get(ctx context.Context, symbol string) (*currency.Currency, error) {
	repo, err := s.uow.CurrencyRepository()
	if err != nil {
		return nil, err
	}
	return repo.GetBySymbol(ctx, symbol)
}

// List returns every currency ordered by symbol.
func (s *Service) List(ctx context.Context) ([]*currency.Currency, error) {
	repo, err := s.uow.CurrencyRepository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// FindByUnits returns the currencies whose symbol or denominations appear in
// units.
func (s *Service) FindByUnits(ctx context.Context, units []string) ([]*currency.Currency, error) {
	repo, err := s.uow.CurrencyRepository()
	if err != nil {
		return nil, err
	}
	return repo.FindByUnits(ctx, units)
}

// ParseAmount parses text and resolves it against the one currency that
// owns every unit it mentions.
func (s *Service) ParseAmount(ctx context.Context, text string) (*currency.Amount, error) {
	tokens, err := parser.ParseAmount(text)
	if err != nil {
		return nil, err
	}
	units := currency.Units(tokens)
	found, err := s.FindByUnits(ctx, units)
	if err != nil {
		return nil, err
	}
	covering := found[:0]
	for _, c := range found {
		if covers(c, units) {
			covering = append(covering, c)
		}
	}
	switch len(covering) {
	case 0:
		return nil, fmt.Errorf("%w for %q", domain.ErrNoMatchingCurrency, text)
	case 1:
		return currency.Resolve(tokens, covering[0])
	}
	return nil, fmt.Errorf("%w for %q", domain.ErrMultipleMatchingCurrencies, text)
}

// checkUnits rejects a spec whose symbol or denomination names are already
// used as a symbol or denomination by another currency. self is the currency
// being updated, or nil.
func checkUnits(ctx context.Context, repo repository.CurrencyRepository, spec currency.Spec, self *currency.Currency) error {
	units := make([]string, 0, len(spec.Denominations)+1)
	units = append(units, spec.Symbol)
	for _, d := range spec.Denominations {
		units = append(units, d.Name)
	}
	clashes, err := repo.FindByUnits(ctx, units)
	if err != nil {
		return err
	}
	for _, c := range clashes {
		if self != nil && c.ID == self.ID {
			continue
		}
		for _, u := range c.Units() {
			if slices.Contains(units, u) {
				return fmt.Errorf("%w: unit %q is already used by %s", domain.ErrAlreadyExists, u, c.Symbol)
			}
		}
	}
	return nil
}

func covers(c *currency.Currency, units []string) bool {
	own := c.Units()
	for _, u := range units {
		if !slices.Contains(own, u) {
			return false
		}
	}
	return true
}

// ExchangeRate returns the latest rate of the currency to the base currency.
func (s *Service) ExchangeRate(ctx context.Context, symbol string) (*currency.ExchangeRate, error) {
	if s.rates != nil {
		rate, err := s.rates.Get(ctx, symbol)
		if err != nil {
			s.logger.Warn("exchange rate cache read failed", "symbol", symbol, "error", err)
		} else if rate != nil {
			return rate, nil
		}
	}

	v, err, _ := s.inflight.Do(symbol, func() (any, error) {
		c, err := s.Get(ctx, symbol)
		if err != nil {
			return nil, err
		}
		repo, err := s.uow.ExchangeRateRepository()
		if err != nil {
			return nil, err
		}
		rate, err := repo.Latest(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		rate.Symbol = c.Symbol
		if s.rates != nil {
			if err := s.rates.Set(ctx, symbol, rate, s.ttl); err != nil {
				s.logger.Warn("exchange rate cache write failed", "symbol", symbol, "error", err)
			}
		}
		return rate, nil
	})
	if err != nil {
		return nil, fmt.Errorf("exchange rate %s: %w", symbol, err)
	}
	return v.(*currency.ExchangeRate), nil
}

// RecordExchangeRate stores a new rate snapshot for symbol and drops the
// cached rate.
func (s *Service) RecordExchangeRate(
	ctx context.Context,
	symbol string,
	amountExchanged, rate decimal.Decimal,
	bought bool,
) (r *currency.ExchangeRate, err error) {
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", domain.ErrValidation)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		currencies, err := uow.CurrencyRepository()
		if err != nil {
			return err
		}
		c, err := currencies.GetBySymbol(ctx, symbol)
		if err != nil {
			return err
		}
		repo, err := uow.ExchangeRateRepository()
		if err != nil {
			return err
		}
		r = currency.NewExchangeRate(c, amountExchanged, rate, bought)
		return repo.Create(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("record exchange rate %s: %w", symbol, err)
	}
	s.invalidate(ctx, symbol)
	s.logger.Info("exchange rate recorded", "symbol", symbol, "rate", r.Rate.String(), "bought", bought)
	return r, nil
}

// Convert expresses amount in the currency toSymbol through both currencies'
// latest rates to the base currency. The result is rounded to 2 places.
func (s *Service) Convert(ctx context.Context, amount *currency.Amount, toSymbol string) (*currency.Amount, error) {
	if amount == nil || amount.Currency == nil {
		return nil, fmt.Errorf("%w: amount has no currency", domain.ErrValidation)
	}
	to, err := s.Get(ctx, toSymbol)
	if err != nil {
		return nil, err
	}
	if to.ID == amount.Currency.ID {
		return currency.NewAmount(amount.Value, to), nil
	}
	fromRate, err := s.ExchangeRate(ctx, amount.Symbol)
	if err != nil {
		return nil, err
	}
	toRate, err := s.ExchangeRate(ctx, to.Symbol)
	if err != nil {
		return nil, err
	}
	value := amount.Value.Mul(fromRate.Rate).Div(toRate.Rate).Round(2)
	return currency.NewAmount(value, to), nil
}

func (s *Service) invalidate(ctx context.Context, symbols ...string) {
	if s.rates == nil {
		return
	}
	for _, sym := range symbols {
		if err := s.rates.Delete(ctx, sym); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("exchange rate cache invalidation failed", "symbol", sym, "error", err)
		}
	}
}
