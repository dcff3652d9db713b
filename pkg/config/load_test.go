package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sqlite://econbot.db", cfg.DB.Url)
	assert.Equal(t, "memory", cfg.EventBus.Driver)
	assert.Equal(t, "econbot:events", cfg.EventBus.Stream)
	assert.Equal(t, time.Minute, cfg.EventBus.ClaimIdle)
	assert.Equal(t, "memory", cfg.ExchangeRateCache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.ExchangeRateCache.TTL)
	assert.Equal(t, "bp*", cfg.Bot.CommandPrefix)
	assert.Empty(t, cfg.Rewards.PolicyFile)
	assert.True(t, cfg.Fixtures.SeedCurrencies)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	env := "BOT_COMMAND_PREFIX=!\nBOT_USER_ID=99\nEVENT_BUS_DRIVER=redis\nREWARDS_POLICY_FILE=/etc/econbot/policy.rew\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(env), 0o600))
	for _, k := range []string{"BOT_COMMAND_PREFIX", "BOT_USER_ID", "EVENT_BUS_DRIVER", "REWARDS_POLICY_FILE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(".env.missing", ".env.test")
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.Bot.CommandPrefix)
	assert.Equal(t, int64(99), cfg.Bot.UserID)
	assert.Equal(t, "redis", cfg.EventBus.Driver)
	assert.Equal(t, "/etc/econbot/policy.rew", cfg.Rewards.PolicyFile)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/econbot")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/econbot", cfg.DB.Url)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_USER_ID", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", maskValue("short"))
	assert.Equal(t, "po****conf", maskValue("postgres://secret@host/conf"))
}
