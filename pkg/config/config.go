package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		RateLimit       struct {
			RPS     float64       `yaml:"rps"`
			Burst   int           `yaml:"burst"`
			IdleTTL time.Duration `yaml:"idle_ttl"` // buckets unused this long are evicted
		} `yaml:"rate_limit"`
		CORS struct {
			AllowOrigins []string      `yaml:"allow_origins"` // empty disables CORS
			MaxAge       time.Duration `yaml:"max_age"`
		} `yaml:"cors"`
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
	Data struct {
		Source string `yaml:"source"` // csv, clickhouse or postgres
		CSV    struct {
			Path string `yaml:"path"`
		} `yaml:"csv"`
		ClickHouse struct {
			Host             string        `yaml:"host"`
			Port             int           `yaml:"port"`
			Database         string        `yaml:"database"`
			Table            string        `yaml:"table"`
			User             string        `yaml:"user"`
			Password         string        `yaml:"password"`
			Protocol         string        `yaml:"protocol"`
			DialTimeout      time.Duration `yaml:"dial_timeout"`
			ReadTimeout      time.Duration `yaml:"read_timeout"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		} `yaml:"clickhouse"`
		Postgres struct {
			URL      string `yaml:"url"`
			Table    string `yaml:"table"`
			MaxConns int32  `yaml:"max_conns"`
		} `yaml:"postgres"`
		LoadTimeout time.Duration `yaml:"load_timeout"`
	} `yaml:"data"`
	Models struct {
		Source     string        `yaml:"source"` // file or http
		Dir        string        `yaml:"dir"`
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
		Retries    int           `yaml:"retries"`
	} `yaml:"models"`
	Weather struct {
		Enabled bool          `yaml:"enabled"`
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"weather"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory, redis or none
		TTL     time.Duration `yaml:"ttl"`
		Prefix  string        `yaml:"prefix"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
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
	Alerts struct {
		Enabled          bool    `yaml:"enabled"`
		Schedule         string  `yaml:"schedule"` // cron spec
		Topic            string  `yaml:"topic"`
		HorizonDays      int     `yaml:"horizon_days"`
		ThresholdPercent float64 `yaml:"threshold_percent"`
		MaxPerMinute     int     `yaml:"max_per_minute"`
		BufferSize       int     `yaml:"buffer_size"`
	} `yaml:"alerts"`
	Catalog struct {
		Crops  map[string][]string `yaml:"crops"`
		States map[string]struct {
			Lat float64 `yaml:"lat"`
			Lon float64 `yaml:"lon"`
		} `yaml:"states"`
	} `yaml:"catalog"`
	Thresholds map[string]float64 `yaml:"thresholds"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, then .env (if present), then overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v := os.Getenv("DATA_CSV_PATH"); v != "" {
		c.Data.CSV.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Data.Postgres.URL = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Models.Dir = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Models.ServiceURL = v
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		c.Weather.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ALERTS_TOPIC"); v != "" {
		c.Alerts.Topic = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid PORT: %s", v)
		}
		c.Server.Port = port
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Default returns a config with every optional knob set.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Port = 8000
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowThreshold = time.Second
	c.Server.RateLimit.RPS = 5
	c.Server.RateLimit.Burst = 10
	c.Server.RateLimit.IdleTTL = 10 * time.Minute
	c.Server.CORS.AllowOrigins = []string{"*"}
	c.Server.CORS.MaxAge = 10 * time.Minute
	c.Logging.Level = "info"
	c.Logging.Format = "console"
	c.Logging.Output = "stdout"
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Data.Source = "csv"
	c.Data.CSV.Path = "data/all_crop_data.csv"
	c.Data.ClickHouse.Database = "croppulse"
	c.Data.ClickHouse.Table = "crop_prices"
	c.Data.Postgres.Table = "crop_prices"
	c.Data.Postgres.MaxConns = 4
	c.Data.LoadTimeout = 30 * time.Second
	c.Models.Source = "file"
	c.Models.Dir = "models"
	c.Models.Timeout = 3 * time.Second
	c.Models.Retries = 3
	c.Weather.Enabled = true
	c.Weather.BaseURL = "https://api.openweathermap.org/data/2.5"
	c.Weather.Timeout = 10 * time.Second
	c.Cache.Backend = "memory"
	c.Cache.TTL = 5 * time.Minute
	c.Cache.Prefix = "croppulse:"
	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "gzip"
	c.Alerts.Schedule = "0 6 * * *"
	c.Alerts.Topic = "croppulse.alerts"
	c.Alerts.HorizonDays = 30
	c.Alerts.ThresholdPercent = 15
	c.Alerts.MaxPerMinute = 60
	c.Alerts.BufferSize = 256
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Data.Source {
	case "csv":
		if c.Data.CSV.Path == "" {
			return fmt.Errorf("data.csv.path is required")
		}
	case "clickhouse":
		if c.Data.ClickHouse.Host == "" {
			return fmt.Errorf("data.clickhouse.host is required")
		}
	case "postgres":
		if c.Data.Postgres.URL == "" {
			return fmt.Errorf("data.postgres.url is required")
		}
	default:
		return fmt.Errorf("data.source must be 'csv', 'clickhouse' or 'postgres', got '%s'", c.Data.Source)
	}
	switch c.Models.Source {
	case "file":
		if c.Models.Dir == "" {
			return fmt.Errorf("models.dir is required")
		}
	case "http":
		if c.Models.ServiceURL == "" {
			return fmt.Errorf("models.service_url is required")
		}
	default:
		return fmt.Errorf("models.source must be 'file' or 'http', got '%s'", c.Models.Source)
	}
	switch c.Cache.Backend {
	case "memory", "none", "":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'none', got '%s'", c.Cache.Backend)
	}
	if c.Alerts.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when alerts are enabled")
		}
		if c.Alerts.Topic == "" {
			return fmt.Errorf("alerts.topic is required")
		}
		if c.Alerts.HorizonDays <= 0 {
			return fmt.Errorf("alerts.horizon_days must be positive")
		}
	}
	return nil
}
