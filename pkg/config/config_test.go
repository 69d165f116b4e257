package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
logging:
  level: info
  format: console
  output: stdout
storage:
  backend: memory
feed:
  source: mock
  interval: 5s
  max_step_pct: 0.005
  assets:
    - symbol: AAPL
      class: equity
      initial_price: 170.00
    - symbol: BTC
      class: crypto
      initial_price: 65000.00
signal:
  interval: 10s
  short_window: 20
  long_window: 50
  max_diff: 0.01
decision:
  interval: 30s
  classes:
    equity:
      buy_threshold: 0.75
      sell_threshold: 0.25
      quantity: 10
    crypto:
      buy_threshold: 0.80
      sell_threshold: 0.20
      quantity: 0.01
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Feed.Interval != 5*time.Second {
		t.Fatalf("unexpected feed interval %v", cfg.Feed.Interval)
	}
	if cfg.Signal.ShortWindow != 20 || cfg.Signal.LongWindow != 50 {
		t.Fatalf("unexpected windows %d/%d", cfg.Signal.ShortWindow, cfg.Signal.LongWindow)
	}
	if len(cfg.Feed.Assets) != 2 || cfg.Feed.Assets[1].InitialPrice != 65000 {
		t.Fatalf("unexpected assets %+v", cfg.Feed.Assets)
	}
	if cfg.Decision.Classes["crypto"].Quantity != 0.01 {
		t.Fatalf("unexpected crypto class %+v", cfg.Decision.Classes["crypto"])
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	cases := map[string]func(string) string{
		"unknown backend": func(s string) string {
			return replace(t, s, "backend: memory", "backend: sqlite")
		},
		"unknown asset class": func(s string) string {
			return replace(t, s, "class: crypto", "class: fx")
		},
		"short window above long": func(s string) string {
			return replace(t, s, "short_window: 20", "short_window: 60")
		},
		"inverted thresholds": func(s string) string {
			return replace(t, s, "buy_threshold: 0.75", "buy_threshold: 0.10")
		},
		"bad feed source": func(s string) string {
			return replace(t, s, "source: mock", "source: csv")
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, mutate(validYAML))); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func replace(t *testing.T, s, old, repl string) string {
	t.Helper()
	if !strings.Contains(s, old) {
		t.Fatalf("pattern %q not found", old)
	}
	return strings.Replace(s, old, repl, 1)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "clickhouse")
	t.Setenv("FEED_SOURCE", "websocket")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != "clickhouse" {
		t.Fatalf("env backend override lost: %s", cfg.Storage.Backend)
	}
	if cfg.Feed.Source != "websocket" {
		t.Fatalf("env source override lost: %s", cfg.Feed.Source)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("env brokers override lost: %v", cfg.Kafka.Brokers)
	}
}
