// Package rewards runs the rewards policy: it compiles policy documents into
// per-event rule tables, evaluates rule conditions against incoming platform
// events and grants the configured rewards through the ledger.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/eventbus"
	"github.com/amirasaad/econbot/pkg/policy"
	"golang.org/x/sync/singleflight"
)

// Catalog resolves reward amount text to an amount of one currency.
type Catalog interface {
	ParseAmount(ctx context.Context, text string) (*currency.Amount, error)
}

// Ledger applies reward grants.
type Ledger interface {
	GrantReward(ctx context.Context, grant wallet.RewardGrant) (*wallet.Balance, error)
}

// Config holds the engine's event guards.
type Config struct {
	// CommandPrefix marks messages addressed to the bot as commands. Such
	// messages never earn rewards.
	CommandPrefix string
	// BotUserID is the bot's own platform id. Its messages never earn rewards.
	BotUserID int64
}

// Engine evaluates the active RuleSet against bus events.
type Engine struct {
	bus     eventbus.Bus
	catalog Catalog
	ledger  Ledger
	cfg     Config
	logger  *slog.Logger

	active   atomic.Pointer[RuleSet]
	inflight singleflight.Group

	mu         sync.Mutex
	registered map[string]struct{}
}

// New returns an engine with an empty policy.
func New(bus eventbus.Bus, catalog Catalog, ledger Ledger, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		bus:        bus,
		catalog:    catalog,
		ledger:     ledger,
		cfg:        cfg,
		logger:     logger.With("component", "rewards"),
		registered: make(map[string]struct{}),
	}
}

// Load activates the policy in src.
func (e *Engine) Load(src string) error {
	return e.Reload(src)
}

// LoadFile activates the policy stored at path.
func (e *Engine) LoadFile(path string) error {
	p, src, err := policy.ParseFile(path)
	if err != nil {
		return err
	}
	set, err := Compile(p, src)
	if err != nil {
		return err
	}
	e.activate(set)
	e.logger.Info("policy loaded", "path", path, "rules", len(set.Rules()))
	return nil
}

// Reload validates src and swaps it in. On error the active policy is left
// untouched.
func (e *Engine) Reload(src string) error {
	set, err := Validate(src)
	if err != nil {
		e.logger.Warn("policy rejected", "error", err)
		return err
	}
	e.activate(set)
	e.logger.Info("policy activated", "rules", len(set.Rules()))
	return nil
}

func (e *Engine) activate(set *RuleSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range set.Events() {
		if _, ok := e.registered[id]; ok {
			continue
		}
		e.bus.Register(id, e.dispatcher(id))
		e.registered[id] = struct{}{}
		e.logger.Debug("dispatcher registered", "event", id)
	}
	e.active.Store(set)
}

// Rules returns the rules of the active policy.
func (e *Engine) Rules() []*Rule {
	return e.active.Load().Rules()
}

// Source returns the text of the active policy.
func (e *Engine) Source() string {
	return e.active.Load().Source()
}

func (e *Engine) dispatcher(eventID string) eventbus.HandlerFunc {
	return func(ctx context.Context, ev eventbus.Event) error {
		rules := e.active.Load().For(eventID)
		if len(rules) == 0 {
			return nil
		}
		ectx, err := NewEventContext(ev)
		if err != nil {
			e.logger.Error("cannot build event context", "event", eventID, "error", err)
			return err
		}
		if reason, skip := e.skip(ectx); skip {
			e.logger.Debug("event skipped", "event", eventID, "reason", reason)
			return nil
		}
		for _, r := range rules {
			e.apply(ctx, r, ectx)
		}
		return nil
	}
}

// skip applies the guards for message events: bot commands and the bot's
// own messages are ignored.
func (e *Engine) skip(c *EventContext) (string, bool) {
	if c.Shape != ShapeMessage {
		return "", false
	}
	if e.cfg.CommandPrefix != "" && strings.HasPrefix(c.Message.Content, e.cfg.CommandPrefix) {
		return "command", true
	}
	if a := c.Author(); a != nil && e.cfg.BotUserID != 0 && a.ID == e.cfg.BotUserID {
		return "own message", true
	}
	return "", false
}

func (e *Engine) apply(ctx context.Context, r *Rule, c *EventContext) {
	log := e.logger.With("rule", r.Name, "event", c.EventID, "key", c.Key)
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic recovered in rule", "panic", p)
		}
	}()

	if !r.Matches(c) {
		return
	}
	log.Debug("rule matched")
	for i, rw := range r.Rewards {
		if err := e.grant(ctx, r, rw, i, c); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				log.Debug("reward already granted", "reward", i)
				continue
			}
			log.Error("reward failed", "reward", i, "target", strings.Join(rw.Target, policy.AttrSeparator), "error", err)
		}
	}
}

func (e *Engine) grant(ctx context.Context, r *Rule, rw Reward, idx int, c *EventContext) error {
	v, ok := c.Resolve(rw.Target)
	if !ok {
		return fmt.Errorf("%w: reward target does not resolve", domain.ErrNotFound)
	}
	target, ok := v.(*platform.User)
	if !ok {
		return fmt.Errorf("%w: reward target is %T, not a user", domain.ErrValidation, v)
	}
	amount, err := e.catalog.ParseAmount(ctx, rw.Amount)
	if err != nil {
		return err
	}

	g := wallet.RewardGrant{
		User:   wallet.User{ID: target.ID, Name: target.Name},
		Amount: amount,
		Rule:   r.Name,
		Note:   "reward: " + r.Name,
	}
	if c.Key == "" {
		_, err = e.ledger.GrantReward(ctx, g)
		return err
	}
	g.EventKey = fmt.Sprintf("%s#%d", c.Key, idx)
	_, err, _ = e.inflight.Do(r.Name+"/"+g.EventKey, func() (any, error) {
		return e.ledger.GrantReward(ctx, g)
	})
	return err
}
