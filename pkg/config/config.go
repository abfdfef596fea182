package config

import (
	"fmt"
	"os"
	"strings"
	"time"

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
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Market struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Timeout        time.Duration `yaml:"timeout"`
		StreamSymbols  []string      `yaml:"stream_symbols"`
		StreamInterval string        `yaml:"stream_interval"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"market"`
	Social struct {
		Twitter struct {
			BearerToken string `yaml:"bearer_token"`
			BaseURL     string `yaml:"base_url"`
			MaxResults  int    `yaml:"max_results"`
		} `yaml:"twitter"`
		Reddit struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
			UserAgent    string `yaml:"user_agent"`
			BaseURL      string `yaml:"base_url"`
			Limit        int    `yaml:"limit"`
		} `yaml:"reddit"`
		ExtraKeywords []string `yaml:"extra_keywords"`
	} `yaml:"social"`
	Analysis struct {
		Weights struct {
			Price     float64 `yaml:"price"`
			Technical float64 `yaml:"technical"`
			Sentiment float64 `yaml:"sentiment"`
		} `yaml:"weights"`
		Indicators struct {
			RSIPeriod        int `yaml:"rsi_period"`
			EMAFast          int `yaml:"ema_fast"`
			EMASlow          int `yaml:"ema_slow"`
			MACDSignal       int `yaml:"macd_signal"`
			ATRPeriod        int `yaml:"atr_period"`
			VolatilityWindow int `yaml:"volatility_window"`
			VolumeWindow     int `yaml:"volume_window"`
		} `yaml:"indicators"`
		Model struct {
			Horizon  int    `yaml:"horizon"`
			NumTrees int    `yaml:"num_trees"`
			MaxDepth int    `yaml:"max_depth"`
			Seed     int64  `yaml:"seed"`
			Dir      string `yaml:"dir"`
		} `yaml:"model"`
		Backtest struct {
			LongThreshold  float64 `yaml:"long_threshold"`
			ShortThreshold float64 `yaml:"short_threshold"`
			InitialCash    float64 `yaml:"initial_cash"`
			FeeBps         float64 `yaml:"fee_bps"`
		} `yaml:"backtest"`
	} `yaml:"analysis"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
		AdminUser string        `yaml:"admin_user"`
		AdminPass string        `yaml:"admin_pass"`
	} `yaml:"auth"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Queue struct {
		Enabled bool   `yaml:"enabled"`
		Name    string `yaml:"name"`
		Workers int    `yaml:"workers"`
	} `yaml:"queue"`
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
// Secrets usually arrive this way rather than through the file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		c.Social.Twitter.BearerToken = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Social.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		c.Social.Reddit.ClientSecret = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Analysis.Model.Dir = v
	}
	if v := os.Getenv("STREAM_SYMBOLS"); v != "" {
		c.Market.StreamSymbols = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}

	ind := c.Analysis.Indicators
	for name, v := range map[string]int{
		"rsi_period":        ind.RSIPeriod,
		"ema_fast":          ind.EMAFast,
		"ema_slow":          ind.EMASlow,
		"macd_signal":       ind.MACDSignal,
		"atr_period":        ind.ATRPeriod,
		"volatility_window": ind.VolatilityWindow,
		"volume_window":     ind.VolumeWindow,
	} {
		if v <= 0 {
			return fmt.Errorf("analysis.indicators.%s must be positive, got %d", name, v)
		}
	}
	if ind.EMAFast >= ind.EMASlow {
		return fmt.Errorf("analysis.indicators.ema_fast must be below ema_slow")
	}

	bt := c.Analysis.Backtest
	if bt.InitialCash <= 0 {
		return fmt.Errorf("analysis.backtest.initial_cash must be positive")
	}
	if bt.FeeBps < 0 {
		return fmt.Errorf("analysis.backtest.fee_bps cannot be negative")
	}
	if bt.LongThreshold <= bt.ShortThreshold {
		return fmt.Errorf("analysis.backtest.long_threshold must exceed short_threshold")
	}
	if c.Analysis.Model.Horizon <= 0 {
		return fmt.Errorf("analysis.model.horizon must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
