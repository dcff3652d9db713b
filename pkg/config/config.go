package config

import (
	"time"
)

type DB struct {
	Url          string        `envconfig:"URL" default:"sqlite://econbot.db"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	ConnLifetime time.Duration `envconfig:"CONN_LIFETIME" default:"1h"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"econbot:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// ExchangeRateCache selects where current exchange rates are cached.
type ExchangeRateCache struct {
	Backend string        `envconfig:"BACKEND" default:"memory"` // memory or redis
	TTL     time.Duration `envconfig:"TTL" default:"15m"`
	Prefix  string        `envconfig:"CACHE_PREFIX" default:"exr:rate:"`
}

// EventBus selects the transport platform events arrive on.
type EventBus struct {
	Driver    string        `envconfig:"DRIVER" default:"memory"` // memory, memory-async or redis
	QueueSize int           `envconfig:"QUEUE_SIZE" default:"100"`
	Stream    string        `envconfig:"STREAM" default:"econbot:events"`
	Group     string        `envconfig:"GROUP" default:"econbot"`
	Consumer  string        `envconfig:"CONSUMER"`
	Block     time.Duration `envconfig:"BLOCK" default:"5s"`
	ClaimIdle time.Duration `envconfig:"CLAIM_IDLE" default:"1m"`
}

type Bot struct {
	CommandPrefix string `envconfig:"COMMAND_PREFIX" default:"bp*"`
	UserID        int64  `envconfig:"USER_ID"`
}

type Rewards struct {
	// PolicyFile is read at start. The embedded default policy is used when
	// empty.
	PolicyFile string `envconfig:"POLICY_FILE"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[econbot]"`
}

type Fixtures struct {
	SeedCurrencies bool `envconfig:"SEED_CURRENCIES" default:"true"`
	// CurrenciesFile replaces the embedded seed list when set.
	CurrenciesFile string `envconfig:"CURRENCIES_FILE"`
}

type App struct {
	Env               string             `envconfig:"APP_ENV" default:"development"`
	Log               *Log               `envconfig:"LOG"`
	DB                *DB                `envconfig:"DATABASE"`
	Redis             *Redis             `envconfig:"REDIS"`
	ExchangeRateCache *ExchangeRateCache `envconfig:"EXCHANGE_RATE_CACHE"`
	EventBus          *EventBus          `envconfig:"EVENT_BUS"`
	Bot               *Bot               `envconfig:"BOT"`
	Rewards           *Rewards           `envconfig:"REWARDS"`
	Fixtures          *Fixtures          `envconfig:"FIXTURES"`
}
