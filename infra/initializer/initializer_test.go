package initializer

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	infraeventbus "github.com/amirasaad/econbot/infra/eventbus"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.App {
	t.Helper()
	return &config.App{
		Env:               "test",
		Log:               &config.Log{Format: "text"},
		DB:                &config.DB{Url: "sqlite://" + filepath.Join(t.TempDir(), "econbot.db")},
		Redis:             &config.Redis{KeyPrefix: "econbot:"},
		ExchangeRateCache: &config.ExchangeRateCache{Backend: "memory", TTL: time.Minute},
		EventBus:          &config.EventBus{Driver: "memory"},
		Bot:               &config.Bot{CommandPrefix: "bp*", UserID: 99},
		Rewards:           &config.Rewards{},
		Fixtures:          &config.Fixtures{SeedCurrencies: true},
	}
}

func TestInitializeApp_SeedsAndLoadsDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	a, err := InitializeApp(ctx, testConfig(t), Options{LogOutput: &logs})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	bpy, err := a.CurrencyService.Get(ctx, "BPY")
	require.NoError(t, err)
	assert.Equal(t, "BotterPy", bpy.Name)

	require.NoError(t, a.Start(ctx))
	assert.NotEmpty(t, a.Rewards.Rules())
	assert.IsType(t, &infraeventbus.MemoryEventBus{}, a.Deps.EventBus)

	// Welcome rule of the default policy.
	member := &platform.User{ID: 5, Name: "newbie"}
	require.NoError(t, a.Deps.EventBus.Emit(ctx, platform.NewMemberJoined(member)))
	w, err := a.LedgerService.Wallet(ctx, member.ID)
	require.NoError(t, err)
	b, ok := w.BalanceOf(bpy.ID)
	require.True(t, ok)
	assert.Equal(t, "10.00", b.Balance.StringFixed(2))
	assert.Contains(t, logs.String(), "Dependencies initialized")
}

func TestInitializeApp_SeedsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := InitializeApp(ctx, cfg, Options{LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	a.Close()

	a, err = InitializeApp(ctx, cfg, Options{LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	defer a.Close()
	all, err := a.CurrencyService.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInitializeDependencies_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.ExchangeRateCache.Backend = "redis"
	cfg.EventBus = &config.EventBus{Driver: "redis", Stream: "events", Group: "econbot", Consumer: "c1", Block: 10 * time.Millisecond}

	deps, err := InitializeDependencies(context.Background(), cfg, Options{LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	defer deps.Close()
	assert.IsType(t, &infraeventbus.RedisEventBus{}, deps.EventBus)
	assert.True(t, mr.Exists("events"), "consumer group creates the stream")
}

func TestInitializeDependencies_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Url = "mysql://nope"
	_, err := InitializeDependencies(context.Background(), cfg, Options{LogOutput: &bytes.Buffer{}})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.EventBus.Driver = "carrier-pigeon"
	_, err = InitializeDependencies(context.Background(), cfg, Options{LogOutput: &bytes.Buffer{}})
	assert.Error(t, err)
}
