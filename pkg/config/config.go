package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format    string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100" validate:"gt=0"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	FinanceFlow struct {
		BaseURL string        `yaml:"base_url" default:"https://api.financeflowapi.com/api/v1" validate:"required,url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
		Source  string        `yaml:"source_tag" default:"FinanceFlow" validate:"required"`
	} `yaml:"financeflow"`
	Calendar struct {
		LookbackDays  int `yaml:"lookback_days" default:"14" validate:"gte=0"`
		LookaheadDays int `yaml:"lookahead_days" default:"60" validate:"gte=0"`
		Workers       int `yaml:"workers" default:"1" validate:"min=1,max=16"`
	} `yaml:"calendar"`
	FX struct {
		RatePerSec float64  `yaml:"rate_per_sec" default:"10" validate:"gt=0"`
		Burst      int      `yaml:"burst" default:"1" validate:"min=1"`
		Workers    int      `yaml:"workers" default:"1" validate:"min=1,max=16"`
		Pairs      []string `yaml:"pairs"`
	} `yaml:"fx"`
	Overview struct {
		TTL           time.Duration `yaml:"ttl" default:"60s" validate:"gt=0"`
		LookbackDays  int           `yaml:"lookback_days" default:"30" validate:"gte=0"`
		LookaheadDays int           `yaml:"lookahead_days" default:"60" validate:"gte=0"`
	} `yaml:"overview"`
	Schedule struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Calendar string        `yaml:"calendar" default:"@every 10m"`
		FX       string        `yaml:"fx" default:"@every 2m"`
		LockTTL  time.Duration `yaml:"lock_ttl" default:"5m" validate:"gt=0"`
	} `yaml:"schedule"`
	Store struct {
		Driver       string        `yaml:"driver" default:"sqlite" validate:"oneof=sqlite clickhouse"`
		QueryTimeout time.Duration `yaml:"query_timeout" default:"10s" validate:"gt=0"`
	} `yaml:"store"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"macropulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path string `yaml:"path" default:"data/macropulse.db"`
	} `yaml:"sqlite"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"macropulse"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Topics struct {
			Events   string `yaml:"events" default:"macropulse.events"`
			JobRuns  string `yaml:"job_runs" default:"macropulse.job_runs"`
			Triggers string `yaml:"triggers" default:"macropulse.triggers"`
			Logs     string `yaml:"logs" default:"macropulse.logs"`
		} `yaml:"topics"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"macropulse"`
			Workers    int           `yaml:"workers" default:"1" validate:"min=1"`
			RetryMax   int           `yaml:"retry_max" default:"2"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"500ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"macropulse.triggers.dlq"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Indicator struct {
		RulesFile string `yaml:"rules_file"`
	} `yaml:"indicator"`
}

var validate = validator.New()

// Default returns a config populated from `default` tags only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables
// (including an optional .env in the working directory) and validates the
// result.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.ApplyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment. getenv is injectable for
// tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("FINANCEFLOW_API_BASE"); v != "" {
		c.FinanceFlow.BaseURL = v
	}
	if v := getenv("FINANCEFLOW_API_KEY"); v != "" {
		c.FinanceFlow.APIKey = v
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("FX_PAIRS"); v != "" {
		c.FX.Pairs = splitList(v)
	}
	if v := getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.FinanceFlow.APIKey == "" {
		return fmt.Errorf("financeflow.api_key is required")
	}
	if c.Store.Driver == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when store.driver is clickhouse")
	}
	if c.Store.Driver == "sqlite" && c.SQLite.Path == "" {
		return fmt.Errorf("sqlite.path is required when store.driver is sqlite")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka to be enabled")
	}
	for _, p := range c.FX.Pairs {
		if len(p) != 6 {
			return fmt.Errorf("fx.pairs: %q is not a six-letter pair", p)
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
