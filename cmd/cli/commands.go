package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/econbot/pkg/app"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/eventbus"
	"github.com/amirasaad/econbot/pkg/parser"
	"github.com/amirasaad/econbot/pkg/policy"
	"github.com/amirasaad/econbot/pkg/rewards"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

type command struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, a *app.App, args []string, out io.Writer) error
	// offline commands need neither configuration nor storage.
	offline func(args []string, out io.Writer) error
}

var (
	ok    = color.New(color.FgGreen)
	title = color.New(color.FgCyan, color.Bold)
	muted = color.New(color.FgHiBlack)
)

var commands = map[string]command{
	"currency add":    {usage: "<spec>", minArgs: 1, run: currencyAdd},
	"currency edit":   {usage: "<symbol> <spec>", minArgs: 2, run: currencyEdit},
	"currency del":    {usage: "<symbol>", minArgs: 1, run: currencyDel},
	"currency list":   {usage: "", run: currencyList},
	"currency help":   {usage: "", offline: currencyHelp},
	"wallet":          {usage: "<user_id>", minArgs: 1, run: showWallet},
	"history":         {usage: "<user_id>", minArgs: 1, run: history},
	"deposit":         {usage: "<user_id> <amount>", minArgs: 2, run: deposit},
	"withdraw":        {usage: "<user_id> <amount>", minArgs: 2, run: withdraw},
	"pay":             {usage: "<sender_id> <receiver_id> <amount>", minArgs: 3, run: pay},
	"flip":            {usage: "<user_id> <heads|tails> <amount>", minArgs: 3, run: flip},
	"guess":           {usage: "<user_id> <1-9> <amount>", minArgs: 3, run: guess},
	"rate get":        {usage: "<symbol>", minArgs: 1, run: rateGet},
	"rate set":        {usage: "<symbol> <rate> [amount_exchanged] [bought]", minArgs: 2, run: rateSet},
	"convert":         {usage: "<to_symbol> <amount>", minArgs: 2, run: convert},
	"policy validate": {usage: "<file>", minArgs: 1, offline: policyValidate},
	"policy show":     {usage: "", run: policyShow},
	"emit message":    {usage: "<author_id> <content>", minArgs: 2, run: emitMessage},
	"emit reply":      {usage: "<author_id> <original_author_id> <content>", minArgs: 3, run: emitReply},
	"emit join":       {usage: "<user_id>", minArgs: 1, run: emitJoin},
	"emit react":      {usage: "<user_id> <author_id> <emoji>", minArgs: 3, run: emitReact},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// lookup finds the command for args, trying two-word names first.
func lookup(args []string) (string, command, []string, bool) {
	if len(args) >= 2 {
		name := args[0] + " " + args[1]
		if c, found := commands[name]; found {
			return name, c, args[2:], true
		}
	}
	if len(args) >= 1 {
		if c, found := commands[args[0]]; found {
			return args[0], c, args[1:], true
		}
	}
	return "", command{}, nil, false
}

func userID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func text(args []string) string {
	return strings.Join(args, " ")
}

func currencyAdd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	c, err := a.CurrencyService.AddFromText(ctx, text(args))
	if err != nil {
		return err
	}
	ok.Fprintf(out, "Added %s\n", c)
	return nil
}

func currencyEdit(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	c, err := a.CurrencyService.UpdateFromText(ctx, args[0], text(args[1:]))
	if err != nil {
		return err
	}
	ok.Fprintf(out, "Updated %s\n", c)
	return nil
}

func currencyDel(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if err := a.CurrencyService.Delete(ctx, args[0]); err != nil {
		return err
	}
	ok.Fprintf(out, "Deleted %s\n", args[0])
	return nil
}

func currencyList(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	all, err := a.CurrencyService.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		muted.Fprintln(out, "No currencies")
		return nil
	}
	for _, c := range all {
		title.Fprintf(out, "%-4s", c.Symbol)
		fmt.Fprintf(out, "%s", c.Name)
		for _, d := range c.Denominations {
			fmt.Fprintf(out, "  %s=%s", d.Name, d.Value.String())
		}
		if c.Description != nil {
			muted.Fprintf(out, "  %s", *c.Description)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func currencyHelp(_ []string, out io.Writer) error {
	fmt.Fprintln(out, parser.SpecHelp)
	return nil
}

func showWallet(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	w, _, err := a.LedgerService.GetOrCreateWallet(ctx, wallet.User{ID: id})
	if err != nil {
		return err
	}
	printBalances(out, w)
	return nil
}

func printBalances(out io.Writer, w *wallet.Wallet) {
	title.Fprintf(out, "Wallet of %d\n", w.UserID)
	balances := slices.Clone(w.Balances)
	slices.SortFunc(balances, func(x, y *wallet.Balance) int {
		return strings.Compare(symbolOf(x), symbolOf(y))
	})
	for _, b := range balances {
		fmt.Fprintf(out, "  %-4s %s\n", symbolOf(b), b.Balance.StringFixed(2))
	}
}

func symbolOf(b *wallet.Balance) string {
	if b.Currency == nil {
		return "?"
	}
	return b.Currency.Symbol
}

func history(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	txs, err := a.LedgerService.Transactions(ctx, id)
	if err != nil {
		return err
	}
	for _, t := range txs {
		fmt.Fprintf(out, "%s  %-10s %10s", t.CreatedAt.Format("2006-01-02 15:04:05"), t.Type, t.Amount.StringFixed(2))
		if t.RelatedUserID != nil {
			fmt.Fprintf(out, "  -> %d", *t.RelatedUserID)
		}
		if t.Note != "" {
			muted.Fprintf(out, "  %s", t.Note)
		}
		fmt.Fprintln(out)
	}
	logs, err := a.LedgerService.RewardLogs(ctx, id)
	if err != nil {
		return err
	}
	if len(logs) > 0 {
		title.Fprintf(out, "%d rewards\n", len(logs))
	}
	for _, l := range logs {
		fmt.Fprintf(out, "  %-16s %s\n", l.Rule, l.Amount.StringFixed(2))
	}
	return nil
}

func amountChange(
	op func(context.Context, int64, *currency.Amount, string) (*wallet.Balance, error),
	verb string,
) func(context.Context, *app.App, []string, io.Writer) error {
	return func(ctx context.Context, a *app.App, args []string, out io.Writer) error {
		id, err := userID(args[0])
		if err != nil {
			return err
		}
		amount, err := a.CurrencyService.ParseAmount(ctx, text(args[1:]))
		if err != nil {
			return err
		}
		b, err := op(ctx, id, amount, "cli "+verb)
		if err != nil {
			return err
		}
		ok.Fprintf(out, "%s %s. Balance: %s %s\n", strings.ToUpper(verb[:1])+verb[1:], amount, b.Balance.StringFixed(2), amount.Symbol)
		return nil
	}
}

func deposit(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	return amountChange(a.LedgerService.Deposit, "deposited")(ctx, a, args, out)
}

func withdraw(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	return amountChange(a.LedgerService.Withdraw, "withdrew")(ctx, a, args, out)
}

func pay(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	from, err := userID(args[0])
	if err != nil {
		return err
	}
	to, err := userID(args[1])
	if err != nil {
		return err
	}
	amount, err := a.CurrencyService.ParseAmount(ctx, text(args[2:]))
	if err != nil {
		return err
	}
	if _, err := a.LedgerService.MakePayment(ctx, wallet.User{ID: from}, wallet.User{ID: to}, amount, "cli payment"); err != nil {
		return err
	}
	ok.Fprintf(out, "Paid %s from %d to %d\n", amount, from, to)
	return nil
}

func flip(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	res, err := a.GamblingService.CoinFlip(ctx, wallet.User{ID: id}, text(args[2:]), args[1])
	if err != nil {
		return err
	}
	printOutcome(out, res.Won, res.Rolled, res.Balance)
	return nil
}

func guess(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid guess %q", args[1])
	}
	res, err := a.GamblingService.GuessNumber(ctx, wallet.User{ID: id}, text(args[2:]), n)
	if err != nil {
		return err
	}
	printOutcome(out, res.Won, res.Rolled, res.Balance)
	return nil
}

func printOutcome(out io.Writer, won bool, rolled string, b *wallet.Balance) {
	if won {
		ok.Fprintf(out, "It was %s. You won! Balance: %s\n", rolled, b.Balance.StringFixed(2))
		return
	}
	color.New(color.FgYellow).Fprintf(out, "It was %s. You lost. Balance: %s\n", rolled, b.Balance.StringFixed(2))
}

func rateGet(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	r, err := a.CurrencyService.ExchangeRate(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s", r.Symbol, r.Rate.String())
	muted.Fprintf(out, "  (%s)\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func rateSet(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	rate, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid rate %q", args[1])
	}
	exchanged := decimal.Zero
	if len(args) > 2 {
		if exchanged, err = decimal.NewFromString(args[2]); err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}
	}
	bought := len(args) > 3 && args[3] == "bought"
	r, err := a.CurrencyService.RecordExchangeRate(ctx, args[0], exchanged, rate, bought)
	if err != nil {
		return err
	}
	ok.Fprintf(out, "Recorded %s rate %s\n", r.Symbol, r.Rate.String())
	return nil
}

func convert(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	amount, err := a.CurrencyService.ParseAmount(ctx, text(args[1:]))
	if err != nil {
		return err
	}
	res, err := a.CurrencyService.Convert(ctx, amount, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s = %s\n", amount, res)
	return nil
}

func policyValidate(args []string, out io.Writer) error {
	p, src, err := policy.ParseFile(args[0])
	if err != nil {
		return err
	}
	set, err := rewards.Compile(p, src)
	if err != nil {
		return err
	}
	ok.Fprintf(out, "%s: %d rules OK\n", args[0], len(set.Rules()))
	return nil
}

func policyShow(_ context.Context, a *app.App, _ []string, out io.Writer) error {
	if err := a.LoadPolicy(); err != nil {
		return err
	}
	for _, r := range a.Rewards.Rules() {
		title.Fprintf(out, "%s", r.Name)
		muted.Fprintf(out, " on %s (%d conditions, %d rewards)\n", r.Trigger, len(r.Conditions), len(r.Rewards))
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, a.Rewards.Source())
	return nil
}

// emit publishes ev. In-process buses run the policy right here, so it is
// activated first. With the redis transport the running econbot process
// handles the event.
func emit(ctx context.Context, a *app.App, ev eventbus.Event, out io.Writer) error {
	if a.Config.EventBus.Driver != "redis" {
		if err := a.LoadPolicy(); err != nil {
			return err
		}
	}
	if err := a.Deps.EventBus.Emit(ctx, ev); err != nil {
		return err
	}
	ok.Fprintf(out, "Emitted %s\n", ev.Type())
	return nil
}

func postedBy(id int64, content string) *platform.Message {
	return &platform.Message{
		ID:      time.Now().UnixNano(),
		Author:  &platform.User{ID: id, Name: strconv.FormatInt(id, 10)},
		Content: content,
	}
}

func emitMessage(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	return emit(ctx, a, platform.NewMessagePosted(postedBy(id, text(args[1:]))), out)
}

func emitReply(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	originalID, err := userID(args[1])
	if err != nil {
		return err
	}
	original := postedBy(originalID, "")
	m := postedBy(id, text(args[2:]))
	m.Reference = &platform.Reference{MessageID: original.ID, Cached: original}
	return emit(ctx, a, platform.NewMessagePosted(m), out)
}

func emitJoin(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	return emit(ctx, a, platform.NewMemberJoined(&platform.User{ID: id, Name: args[0]}), out)
}

func emitReact(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := userID(args[0])
	if err != nil {
		return err
	}
	authorID, err := userID(args[1])
	if err != nil {
		return err
	}
	r := &platform.Reaction{Emoji: args[2], Count: 1, Message: postedBy(authorID, "")}
	return emit(ctx, a, platform.NewReactionAdded(r, &platform.User{ID: id, Name: args[0]}), out)
}
