package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
market:
  source: fixture
  symbols: [BTC, SOL]
monitor:
  interval: 1m
  volatility_warning: 5
  volatility_critical: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Market.Source != "fixture" {
		t.Fatalf("source = %q", cfg.Market.Source)
	}
	if len(cfg.Market.Symbols) != 2 || cfg.Market.Symbols[1] != "SOL" {
		t.Fatalf("symbols = %v", cfg.Market.Symbols)
	}
	if cfg.Monitor.Interval != time.Minute {
		t.Fatalf("interval = %v", cfg.Monitor.Interval)
	}
}

func TestLoadRejectsBadSource(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: bloomberg
  symbols: [BTC]
monitor:
  interval: 1m
`))
	if err == nil {
		t.Fatalf("unknown source must fail validation")
	}
}

func TestLoadRejectsInvertedVolatilityBands(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: fixture
  symbols: [BTC]
monitor:
  interval: 1m
  volatility_warning: 10
  volatility_critical: 5
`))
	if err == nil {
		t.Fatalf("critical below warning must fail validation")
	}
}

func TestLoadRejectsBadThresholdSeed(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: fixture
  symbols: [BTC]
monitor:
  interval: 1m
  thresholds:
    BTC:
      target: 70000
      direction: sideways
`))
	if err == nil {
		t.Fatalf("bad threshold direction must fail validation")
	}
}

func TestLoadRejectsEnabledTelegramWithoutToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
market:
  source: fixture
  symbols: [BTC]
monitor:
  interval: 1m
notify:
  telegram:
    enabled: true
`))
	if err == nil {
		t.Fatalf("enabled telegram without credentials must fail validation")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SYMBOLS", "DOGE,WIF")
	t.Setenv("MARKET_SOURCE", "binance")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")
	t.Setenv("DATA_DIR", "/var/lib/hunter")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Market.Symbols) != 2 || cfg.Market.Symbols[0] != "DOGE" {
		t.Fatalf("symbols = %v", cfg.Market.Symbols)
	}
	if cfg.Market.Source != "binance" {
		t.Fatalf("source = %q", cfg.Market.Source)
	}
	if !cfg.Notify.Telegram.Enabled || cfg.Notify.Telegram.BotToken != "123:abc" {
		t.Fatalf("telegram = %+v", cfg.Notify.Telegram)
	}
	if cfg.Storage.DataDir != "/var/lib/hunter" {
		t.Fatalf("data dir = %q", cfg.Storage.DataDir)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
}

func TestEnvOverrideIgnoresBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 0 {
		t.Fatalf("bad int override must keep the file value, got %d", cfg.Server.Port)
	}
}
