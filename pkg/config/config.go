package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AssetConfig struct {
	Symbol       string  `yaml:"symbol"`
	Class        string  `yaml:"class"` // equity or crypto
	InitialPrice float64 `yaml:"initial_price"`
}

type ClassConfig struct {
	BuyThreshold  float64 `yaml:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold"`
	Quantity      float64 `yaml:"quantity"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Storage struct {
		Backend string `yaml:"backend"` // clickhouse or memory
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		TradesTopic string   `yaml:"trades_topic"`
		TicksTopic  string   `yaml:"ticks_topic"`
		Compression string   `yaml:"compression"`
		Producer    struct {
			RequiredAcks int           `yaml:"required_acks"`
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID  string `yaml:"group_id"`
			MinBytes int    `yaml:"min_bytes"`
			MaxBytes int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Feed struct {
		Source   string        `yaml:"source"` // mock, websocket or kafka
		Interval time.Duration `yaml:"interval"`
		Assets   []AssetConfig `yaml:"assets"`
		// MaxStepPct bounds the per-tick random walk step as a fraction of
		// the retained price (0.005 = +/-0.5%).
		MaxStepPct float64 `yaml:"max_step_pct"`
		WebSocket  struct {
			URL            string        `yaml:"url"`
			APIKey         string        `yaml:"api_key"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"websocket"`
	} `yaml:"feed"`
	Signal struct {
		Interval    time.Duration `yaml:"interval"`
		ShortWindow int           `yaml:"short_window"`
		LongWindow  int           `yaml:"long_window"`
		// MaxDiff maps an SMA spread of this fraction of price to full
		// conviction (0.01 saturates at +/-1% of price).
		MaxDiff float64 `yaml:"max_diff"`
	} `yaml:"signal"`
	Decision struct {
		Interval time.Duration          `yaml:"interval"`
		Classes  map[string]ClassConfig `yaml:"classes"`
	} `yaml:"decision"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FEED_SOURCE"); v != "" {
		c.Feed.Source = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.WebSocket.APIKey = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Storage.Backend != "clickhouse" && c.Storage.Backend != "memory" {
		return fmt.Errorf("storage.backend must be 'clickhouse' or 'memory', got '%s'", c.Storage.Backend)
	}
	if len(c.Feed.Assets) == 0 {
		return fmt.Errorf("feed.assets cannot be empty")
	}
	for _, a := range c.Feed.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("feed.assets entries need a symbol")
		}
		if _, ok := c.Decision.Classes[a.Class]; !ok {
			return fmt.Errorf("asset %s references unknown class '%s'", a.Symbol, a.Class)
		}
	}
	if c.Signal.ShortWindow <= 0 || c.Signal.LongWindow <= 0 {
		return fmt.Errorf("signal windows must be positive")
	}
	if c.Signal.ShortWindow >= c.Signal.LongWindow {
		return fmt.Errorf("signal.short_window must be below signal.long_window")
	}
	if c.Signal.MaxDiff <= 0 {
		return fmt.Errorf("signal.max_diff must be positive")
	}
	for name, cl := range c.Decision.Classes {
		if cl.BuyThreshold <= cl.SellThreshold {
			return fmt.Errorf("class %s: buy_threshold must be above sell_threshold", name)
		}
		if cl.Quantity <= 0 {
			return fmt.Errorf("class %s: quantity must be positive", name)
		}
	}
	switch c.Feed.Source {
	case "mock", "websocket", "kafka":
	default:
		return fmt.Errorf("feed.source must be 'mock', 'websocket' or 'kafka', got '%s'", c.Feed.Source)
	}
	return nil
}
