// Command econbot runs the economy: it loads the rewards policy and grants
// rewards for the platform events arriving on the configured event bus.
// SIGHUP reloads the policy file; an invalid file keeps the active policy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/econbot/infra/initializer"
	"github.com/amirasaad/econbot/pkg/app"
	"github.com/amirasaad/econbot/pkg/config"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := initializer.InitializeApp(ctx, cfg, initializer.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	logger := a.Deps.Logger
	logger.Info("econbot started",
		"env", cfg.Env,
		"event_bus", cfg.EventBus.Driver,
		"rules", len(a.Rewards.Rules()),
	)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			logger.Info("econbot stopping")
			return nil
		case <-hup:
			reload(a)
		}
	}
}

func reload(a *app.App) {
	if a.Config.Rewards.PolicyFile == "" {
		a.Deps.Logger.Warn("No policy file configured; nothing to reload")
		return
	}
	if err := a.LoadPolicy(); err != nil {
		a.Deps.Logger.Error("Policy reload failed; keeping the active policy", "error", err)
	}
}
