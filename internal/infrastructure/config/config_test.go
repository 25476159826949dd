package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[symbols]
list = ["aapl", "MSFT", "aapl", ""]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.TickIntervalMs != 2000 {
		t.Errorf("expected default tick 2000ms, got %d", cfg.App.TickIntervalMs)
	}
	if cfg.App.StaleAfterMs != 6000 {
		t.Errorf("expected stale_after default 3x tick, got %d", cfg.App.StaleAfterMs)
	}
	if !cfg.StartingCash().Equal(dec("10000")) {
		t.Errorf("expected starting cash 10000, got %s", cfg.StartingCash())
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected memory backend default, got %s", cfg.Storage.Backend)
	}
	if cfg.Simulation.Volatility != 0.02 || cfg.Simulation.Momentum != 0.7 {
		t.Errorf("expected default simulation params, got %+v", cfg.Simulation)
	}

	// symbols normalized and deduplicated
	if len(cfg.Symbols.List) != 2 || cfg.Symbols.List[0] != "AAPL" || cfg.Symbols.List[1] != "MSFT" {
		t.Errorf("expected [AAPL MSFT], got %v", cfg.Symbols.List)
	}

	if cfg.TickInterval() != 2*time.Second {
		t.Errorf("expected 2s tick interval, got %s", cfg.TickInterval())
	}
}

func TestLoadNormalizesBasePrices(t *testing.T) {
	path := writeConfig(t, `
[symbols]
list = ["AAPL"]

[symbols.base_prices]
aapl = 175.50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Symbols.BasePrices["AAPL"] != 175.50 {
		t.Errorf("expected base price keyed by uppercase symbol, got %v", cfg.Symbols.BasePrices)
	}
}

func TestLoadRejectsEmptySymbols(t *testing.T) {
	path := writeConfig(t, `
[symbols]
list = []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty symbol list")
	}
}

func TestLoadRejectsBadStartingCash(t *testing.T) {
	path := writeConfig(t, `
[portfolio]
starting_cash = "lots"

[symbols]
list = ["AAPL"]
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "starting_cash") {
		t.Fatalf("expected starting_cash parse error, got %v", err)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[symbols]
list = ["AAPL"]

[storage]
backend = "etcd"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadRejectsFeedWithoutURL(t *testing.T) {
	path := writeConfig(t, `
[symbols]
list = ["AAPL"]

[feed]
enabled = true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when feed enabled without ws_url")
	}
}
