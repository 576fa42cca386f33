package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"CryptoHunter/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Market struct {
		Source         string        `yaml:"source"` // aggregate, binance, coingecko, or fixture
		Symbols        []string      `yaml:"symbols"`
		BinanceURL     string        `yaml:"binance_url"`
		CoinGeckoURL   string        `yaml:"coingecko_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
	} `yaml:"market"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Monitor struct {
		Interval           time.Duration            `yaml:"interval"`
		VolatilityWarning  float64                  `yaml:"volatility_warning"`
		VolatilityCritical float64                  `yaml:"volatility_critical"`
		MinGainers24h      float64                  `yaml:"min_gainers_24h"`
		StrongGainer24h    float64                  `yaml:"strong_gainer_24h"`
		VolumeRatio        float64                  `yaml:"volume_ratio"`
		Cooldown           time.Duration            `yaml:"cooldown"`
		HistoryLimit       int                      `yaml:"history_limit"`
		ExcludedSymbols    []string                 `yaml:"excluded_symbols"`
		Thresholds         map[string]ThresholdSeed `yaml:"thresholds"`
	} `yaml:"monitor"`
	Prediction struct {
		HorizonHours   int     `yaml:"horizon_hours"`
		MinDataPoints  int     `yaml:"min_data_points"`
		TrendThreshold float64 `yaml:"trend_threshold"`
	} `yaml:"prediction"`
	Indicators struct {
		RSIPeriod       int     `yaml:"rsi_period"`
		RSIOverbought   float64 `yaml:"rsi_overbought"`
		RSIOversold     float64 `yaml:"rsi_oversold"`
		MACDFast        int     `yaml:"macd_fast"`
		MACDSlow        int     `yaml:"macd_slow"`
		MACDSignal      int     `yaml:"macd_signal"`
		BollingerPeriod int     `yaml:"bollinger_period"`
		BollingerMult   float64 `yaml:"bollinger_mult"`
	} `yaml:"indicators"`
	Notify struct {
		Timeout  time.Duration `yaml:"timeout"`
		Telegram struct {
			Enabled  bool   `yaml:"enabled"`
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
		Feishu struct {
			Enabled    bool   `yaml:"enabled"`
			WebhookURL string `yaml:"webhook_url"`
		} `yaml:"feishu"`
		DingTalk struct {
			Enabled    bool   `yaml:"enabled"`
			WebhookURL string `yaml:"webhook_url"`
			Secret     string `yaml:"secret"`
		} `yaml:"dingtalk"`
	} `yaml:"notify"`
	Storage struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"storage"`
	Paper struct {
		InitialBalance float64 `yaml:"initial_balance"`
	} `yaml:"paper"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// ThresholdSeed is a price threshold loaded from config for a symbol.
type ThresholdSeed struct {
	Target    float64 `yaml:"target"`
	Direction string  `yaml:"direction"` // above or below
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

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Market.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("MARKET_SOURCE"); v != "" {
		c.Market.Source = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notify.Telegram.BotToken = v
		c.Notify.Telegram.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Notify.Telegram.ChatID = v
	}
	if v := os.Getenv("FEISHU_WEBHOOK_URL"); v != "" {
		c.Notify.Feishu.WebhookURL = v
		c.Notify.Feishu.Enabled = true
	}
	if v := os.Getenv("DINGTALK_WEBHOOK_URL"); v != "" {
		c.Notify.DingTalk.WebhookURL = v
		c.Notify.DingTalk.Enabled = true
	}
	if v := os.Getenv("DINGTALK_SECRET"); v != "" {
		c.Notify.DingTalk.Secret = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.Redis.DB = util.ParseIntDefault(v, c.Redis.DB)
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols cannot be empty")
	}
	switch c.Market.Source {
	case "aggregate", "binance", "coingecko", "fixture":
	case "":
		return fmt.Errorf("market.source is required")
	default:
		return fmt.Errorf("market.source must be 'aggregate', 'binance', 'coingecko' or 'fixture', got '%s'", c.Market.Source)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if c.Monitor.VolatilityCritical < c.Monitor.VolatilityWarning {
		return fmt.Errorf("monitor.volatility_critical cannot be below monitor.volatility_warning")
	}
	for sym, seed := range c.Monitor.Thresholds {
		if seed.Target <= 0 {
			return fmt.Errorf("monitor.thresholds.%s.target must be positive", sym)
		}
		if seed.Direction != "above" && seed.Direction != "below" {
			return fmt.Errorf("monitor.thresholds.%s.direction must be 'above' or 'below'", sym)
		}
	}
	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "") {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
	}
	if c.Notify.Feishu.Enabled && c.Notify.Feishu.WebhookURL == "" {
		return fmt.Errorf("notify.feishu requires webhook_url when enabled")
	}
	if c.Notify.DingTalk.Enabled && c.Notify.DingTalk.WebhookURL == "" {
		return fmt.Errorf("notify.dingtalk requires webhook_url when enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Paper.InitialBalance < 0 {
		return fmt.Errorf("paper.initial_balance cannot be negative")
	}
	return nil
}
