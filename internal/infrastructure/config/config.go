package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		TickIntervalMs     int `toml:"tick_interval_ms"`
		WatchdogIntervalMs int `toml:"watchdog_interval_ms"`
		StaleAfterMs       int `toml:"stale_after_ms"`
		SnapshotEveryMin   int `toml:"snapshot_every_min"`
	} `toml:"app"`

	Portfolio struct {
		StartingCash string `toml:"starting_cash"`
	} `toml:"portfolio"`

	Symbols struct {
		List       []string           `toml:"list"`
		BasePrices map[string]float64 `toml:"base_prices"`
	} `toml:"symbols"`

	Simulation struct {
		Seed       int64   `toml:"seed"` // 0 => seeded from wall clock
		Volatility float64 `toml:"volatility"`
		Momentum   float64 `toml:"momentum"`
		Trend      float64 `toml:"trend"`
		JumpProb   float64 `toml:"jump_prob"`
		JumpMax    float64 `toml:"jump_max"`
		PriceFloor float64 `toml:"price_floor"`
	} `toml:"simulation"`

	Feed struct {
		Enabled bool   `toml:"enabled"`
		WsURL   string `toml:"ws_url"`
	} `toml:"feed"`

	Storage struct {
		Backend     string   `toml:"backend"` // memory | sqlite | postgres | redis
		SqlitePath  string   `toml:"sqlite_path"`
		RedisPrefix string   `toml:"redis_prefix"`
		RedisTTLSec int      `toml:"redis_ttl_sec"`
		Mirrors     []string `toml:"mirrors"` // extra backends written through a composite
	} `toml:"storage"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.TickIntervalMs <= 0 {
		cfg.App.TickIntervalMs = 2000
	}
	if cfg.App.WatchdogIntervalMs <= 0 {
		cfg.App.WatchdogIntervalMs = 1000
	}
	if cfg.App.StaleAfterMs <= 0 {
		cfg.App.StaleAfterMs = 3 * cfg.App.TickIntervalMs
	}
	if cfg.App.SnapshotEveryMin <= 0 {
		cfg.App.SnapshotEveryMin = 5
	}
	if strings.TrimSpace(cfg.Portfolio.StartingCash) == "" {
		cfg.Portfolio.StartingCash = "10000"
	}
	if cfg.Simulation.Volatility <= 0 {
		cfg.Simulation.Volatility = 0.02
	}
	if cfg.Simulation.Momentum <= 0 || cfg.Simulation.Momentum > 1 {
		cfg.Simulation.Momentum = 0.7
	}
	if cfg.Simulation.Trend == 0 {
		cfg.Simulation.Trend = 0.0001
	}
	if cfg.Simulation.JumpProb <= 0 || cfg.Simulation.JumpProb > 0.05 {
		cfg.Simulation.JumpProb = 0.03
	}
	if cfg.Simulation.JumpMax <= 0 {
		cfg.Simulation.JumpMax = 0.05
	}
	if cfg.Simulation.PriceFloor <= 0 {
		cfg.Simulation.PriceFloor = 0.01
	}
	if strings.TrimSpace(cfg.Storage.Backend) == "" {
		cfg.Storage.Backend = "memory"
	}
	if strings.TrimSpace(cfg.Storage.SqlitePath) == "" {
		cfg.Storage.SqlitePath = "data/papertrade.db"
	}
	if strings.TrimSpace(cfg.Storage.RedisPrefix) == "" {
		cfg.Storage.RedisPrefix = "papertrade"
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.List = normalizeSymbols(cfg.Symbols.List)
	if len(cfg.Symbols.List) == 0 {
		return errors.New("symbols.list is empty")
	}

	cash, err := decimal.NewFromString(cfg.Portfolio.StartingCash)
	if err != nil {
		return fmt.Errorf("portfolio.starting_cash %q: %w", cfg.Portfolio.StartingCash, err)
	}
	if cash.IsNegative() {
		return errors.New("portfolio.starting_cash must be >= 0")
	}

	base := make(map[string]float64, len(cfg.Symbols.BasePrices))
	for sym, p := range cfg.Symbols.BasePrices {
		u := strings.ToUpper(strings.TrimSpace(sym))
		if u == "" {
			continue
		}
		if p <= 0 {
			return fmt.Errorf("symbols.base_prices[%s] must be > 0", u)
		}
		base[u] = p
	}
	cfg.Symbols.BasePrices = base

	switch cfg.Storage.Backend {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, sqlite, postgres, redis", cfg.Storage.Backend)
	}
	for _, m := range cfg.Storage.Mirrors {
		switch m {
		case "sqlite", "postgres", "redis":
		default:
			return fmt.Errorf("storage.mirrors entry %q is not one of sqlite, postgres, redis", m)
		}
	}

	if cfg.Feed.Enabled && strings.TrimSpace(cfg.Feed.WsURL) == "" {
		return errors.New("feed.ws_url empty but feed enabled")
	}
	return nil
}

// StartingCash returns the parsed starting cash. Load has validated it.
func (c *Config) StartingCash() decimal.Decimal {
	cash, _ := decimal.NewFromString(c.Portfolio.StartingCash)
	return cash
}

// TickInterval returns the main refresh period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.App.TickIntervalMs) * time.Millisecond
}

// WatchdogInterval returns the watchdog check period.
func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.App.WatchdogIntervalMs) * time.Millisecond
}

// StaleAfter returns the stall detection threshold.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.App.StaleAfterMs) * time.Millisecond
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
