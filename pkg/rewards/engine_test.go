package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"

	infrabus "github.com/amirasaad/econbot/infra/eventbus"
	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct{}

func (fakeCatalog) ParseAmount(_ context.Context, text string) (*currency.Amount, error) {
	gc := currency.New(testutils.GameCoins())
	switch text {
	case "5 GC":
		return currency.NewAmount(decimal.NewFromInt(5), gc), nil
	case "1 GC":
		return currency.NewAmount(decimal.NewFromInt(1), gc), nil
	}
	return nil, domain.ErrNoMatchingCurrency
}

type fakeLedger struct {
	mu     sync.Mutex
	grants []wallet.RewardGrant
	seen   map[string]bool
	panics bool
}

func (l *fakeLedger) GrantReward(_ context.Context, g wallet.RewardGrant) (*wallet.Balance, error) {
	if l.panics {
		panic("ledger exploded")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	if g.EventKey != "" && l.seen[g.Rule+g.EventKey] {
		return nil, domain.ErrAlreadyExists
	}
	l.seen[g.Rule+g.EventKey] = true
	l.grants = append(l.grants, g)
	return &wallet.Balance{Balance: g.Amount.Value}, nil
}

func (l *fakeLedger) Grants() []wallet.RewardGrant {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]wallet.RewardGrant(nil), l.grants...)
}

const thanksRule = `
rule Thanks {
    on message.send
    if { content *= "thanks"; }
    reward author gets 5 GC;
}
`

func newEngine(t *testing.T, src string) (*Engine, *infrabus.MemoryEventBus, *fakeLedger) {
	t.Helper()
	bus := infrabus.NewWithMemory(testutils.DiscardLogger())
	ledger := &fakeLedger{}
	e := New(bus, fakeCatalog{}, ledger, Config{CommandPrefix: "bp*", BotUserID: bot.ID}, testutils.DiscardLogger())
	require.NoError(t, e.Load(src))
	return e, bus, ledger
}

func post(t *testing.T, bus *infrabus.MemoryEventBus, author *platform.User, content string) *platform.MessageEvent {
	t.Helper()
	ev := platform.NewMessagePosted(&platform.Message{ID: 1, Author: author, Content: content, Channel: lobby})
	require.NoError(t, bus.Emit(context.Background(), ev))
	return ev
}

func TestEngine_GrantsOnMatch(t *testing.T) {
	_, bus, ledger := newEngine(t, thanksRule)

	ev := post(t, bus, alice, "thanks a lot")
	post(t, bus, alice, "hello")

	grants := ledger.Grants()
	require.Len(t, grants, 1)
	g := grants[0]
	assert.Equal(t, alice.ID, g.User.ID)
	assert.Equal(t, "Alice", g.User.Name)
	assert.Equal(t, "Thanks", g.Rule)
	assert.Equal(t, "reward: Thanks", g.Note)
	assert.Equal(t, ev.ID.String()+"#0", g.EventKey)
	assert.Equal(t, "5.00 GC", g.Amount.String())
}

func TestEngine_CommandPrefixGuard(t *testing.T) {
	_, bus, ledger := newEngine(t, thanksRule)

	post(t, bus, alice, "bp*thanks")
	assert.Empty(t, ledger.Grants(), "commands never earn rewards")

	post(t, bus, alice, "thanks bp*")
	assert.Len(t, ledger.Grants(), 1)
}

func TestEngine_BotGuard(t *testing.T) {
	_, bus, ledger := newEngine(t, thanksRule)
	post(t, bus, bot, "thanks")
	assert.Empty(t, ledger.Grants())
}

func TestEngine_GuardsOnlyApplyToMessages(t *testing.T) {
	_, bus, ledger := newEngine(t, `rule Welcome { on member.join reward member gets 1 GC; }`)
	require.NoError(t, bus.Emit(context.Background(), platform.NewMemberJoined(bot)))
	assert.Len(t, ledger.Grants(), 1)
}

func TestEngine_DuplicateDeliveryGrantsOnce(t *testing.T) {
	_, bus, ledger := newEngine(t, thanksRule)
	ev := post(t, bus, alice, "thanks")
	require.NoError(t, bus.Emit(context.Background(), ev))
	assert.Len(t, ledger.Grants(), 1)
}

func TestEngine_ConcurrentDuplicatesGrantOnce(t *testing.T) {
	_, bus, ledger := newEngine(t, thanksRule)
	ev := platform.NewMessagePosted(&platform.Message{ID: 1, Author: alice, Content: "thanks"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Emit(context.Background(), ev)
		}()
	}
	wg.Wait()
	assert.Len(t, ledger.Grants(), 1)
}

func TestEngine_RewardsInOrderWithDistinctKeys(t *testing.T) {
	_, bus, ledger := newEngine(t, `
rule Both {
    on message.send
    reward author gets 5 GC;
    reward author gets 1 GC;
}`)
	ev := post(t, bus, alice, "anything")
	grants := ledger.Grants()
	require.Len(t, grants, 2)
	assert.Equal(t, ev.ID.String()+"#0", grants[0].EventKey)
	assert.Equal(t, ev.ID.String()+"#1", grants[1].EventKey)
}

func TestEngine_RewardFailuresAreContained(t *testing.T) {
	_, bus, ledger := newEngine(t, `
rule Broken {
    on message.send
    reward channel gets 5 GC;
    reward original_author gets 5 GC;
    reward author gets 7 XYZ;
    reward author gets 1 GC;
}`)
	post(t, bus, alice, "hi")
	grants := ledger.Grants()
	require.Len(t, grants, 1, "failing rewards do not stop the rest")
	assert.Equal(t, "1.00 GC", grants[0].Amount.String())
}

func TestEngine_PanicIsRecovered(t *testing.T) {
	_, bus, ledger := newEngine(t, thanksRule)
	ledger.panics = true
	assert.NotPanics(t, func() { post(t, bus, alice, "thanks") })
}

func TestEngine_Reload(t *testing.T) {
	e, bus, ledger := newEngine(t, thanksRule)

	err := e.Reload(`rule { broken`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
	err = e.Reload(`rule A { on message.nope reward author gets 1 GC; }`)
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, thanksRule, e.Source(), "rejected documents leave the policy active")
	post(t, bus, alice, "thanks")
	assert.Len(t, ledger.Grants(), 1)

	require.NoError(t, e.Reload(`rule Welcome { on member.join reward member gets 1 GC; }`))
	require.Len(t, e.Rules(), 1)
	assert.Equal(t, "Welcome", e.Rules()[0].Name)

	post(t, bus, alice, "thanks")
	assert.Len(t, ledger.Grants(), 1, "the old rule is gone")
	require.NoError(t, bus.Emit(context.Background(), platform.NewMemberJoined(bob)))
	assert.Len(t, ledger.Grants(), 2)

	// Switching back does not register a second dispatcher.
	require.NoError(t, e.Reload(thanksRule))
	post(t, bus, alice, "thanks")
	assert.Len(t, ledger.Grants(), 3)
}

func TestEngine_LoadFile(t *testing.T) {
	bus := infrabus.NewWithMemory(testutils.DiscardLogger())
	e := New(bus, fakeCatalog{}, &fakeLedger{}, Config{}, testutils.DiscardLogger())
	assert.Empty(t, e.Rules())
	assert.Error(t, e.LoadFile("does-not-exist.rew"))
}
