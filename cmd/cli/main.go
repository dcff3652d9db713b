// Command cli administers the economy: currencies, wallets, payments,
// exchange rates and the rewards policy. It can also emit platform events to
// exercise the policy.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/amirasaad/econbot/infra/initializer"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out, logOut io.Writer) error {
	name, cmd, rest, ok := lookup(args)
	if !ok {
		usage(out)
		if len(args) == 0 {
			return nil
		}
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if len(rest) < cmd.minArgs {
		return fmt.Errorf("usage: %s %s", name, cmd.usage)
	}
	if cmd.offline != nil {
		return cmd.offline(rest, out)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	a, err := initializer.InitializeApp(ctx, cfg, initializer.Options{LogOutput: logOut})
	if err != nil {
		return err
	}
	defer a.Close()
	return cmd.run(ctx, a, rest, out)
}

func usage(out io.Writer) {
	bold := color.New(color.Bold)
	bold.Fprintln(out, "Usage: cli <command> [arguments]")
	fmt.Fprintln(out, "Commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(out, "  %s %s\n", name, commands[name].usage)
	}
}
