// Package config loads and validates querier configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// index, the metadata store backends, the HTTP surface and the ambient
// services (logging, metrics, Kafka query events).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Index     IndexConfig     `yaml:"index"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Retry     RetryConfig     `yaml:"retry"`
}

// IndexConfig locates the inverted index and names the normalizer applied to
// query words. Format is "text" (one word per line) or "segment" (.spdx).
type IndexConfig struct {
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`
	Normalizer string `yaml:"normalizer"`
}

// MetadataConfig selects the per-document URL store.
type MetadataConfig struct {
	Backend        string        `yaml:"backend"`
	Dir            string        `yaml:"dir"`
	SQLitePath     string        `yaml:"sqlitePath"`
	RedisKeyPrefix string        `yaml:"redisKeyPrefix"`
	Table          string        `yaml:"table"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig guards lookups against the redis and postgres backends.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failureThreshold"`
	ResetTimeout     time.Duration `yaml:"resetTimeout"`
}

// ServerConfig holds HTTP server settings for `querier serve`.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	DefaultLimit    int           `yaml:"defaultLimit"`
	MaxResults      int           `yaml:"maxResults"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	QueryEvents string `yaml:"queryEvents"`
}

// AnalyticsConfig controls publishing of query events.
type AnalyticsConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"bufferSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// RetryConfig controls backoff when connecting to metadata backends.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"maxAttempts"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a Config suitable for local use against a TSE-style data
// directory.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Path:       "data/index.dat",
			Format:     "text",
			Normalizer: "lowercase",
		},
		Metadata: MetadataConfig{
			Backend:        "dir",
			Dir:            "data/pages",
			RedisKeyPrefix: "doc:url:",
			Table:          "documents",
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				ResetTimeout:     30 * time.Second,
			},
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			DefaultLimit:    50,
			MaxResults:      1000,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "tse",
			User:            "tse",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 4,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				QueryEvents: "query-events",
			},
		},
		Analytics: AnalyticsConfig{
			Enabled:    false,
			BufferSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
	}
}

var (
	validFormats    = map[string]struct{}{"text": {}, "segment": {}}
	validBackends   = map[string]struct{}{"dir": {}, "redis": {}, "postgres": {}, "sqlite": {}}
	validNormalizer = map[string]struct{}{"lowercase": {}, "stemming": {}}
)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result error
	if c.Index.Path == "" {
		result = multierror.Append(result, errors.New("index path has not been specified"))
	}
	if _, ok := validFormats[c.Index.Format]; !ok {
		result = multierror.Append(result, fmt.Errorf("unknown index format %q", c.Index.Format))
	}
	if _, ok := validNormalizer[c.Index.Normalizer]; !ok {
		result = multierror.Append(result, fmt.Errorf("unknown normalizer %q", c.Index.Normalizer))
	}
	if _, ok := validBackends[c.Metadata.Backend]; !ok {
		result = multierror.Append(result, fmt.Errorf("unknown metadata backend %q", c.Metadata.Backend))
	}
	switch c.Metadata.Backend {
	case "dir":
		if c.Metadata.Dir == "" {
			result = multierror.Append(result, errors.New("metadata dir has not been specified"))
		}
	case "sqlite":
		if c.Metadata.SQLitePath == "" {
			result = multierror.Append(result, errors.New("metadata sqlitePath has not been specified"))
		}
		if c.Metadata.Table == "" {
			result = multierror.Append(result, errors.New("metadata table has not been specified"))
		}
	case "postgres":
		if c.Metadata.Table == "" {
			result = multierror.Append(result, errors.New("metadata table has not been specified"))
		}
	}
	if c.Server.DefaultLimit < 0 || c.Server.MaxResults < 0 {
		result = multierror.Append(result, errors.New("server limits must not be negative"))
	}
	if c.Analytics.Enabled && len(c.Kafka.Brokers) == 0 {
		result = multierror.Append(result, errors.New("analytics enabled but no kafka brokers configured"))
	}
	return result
}

// applyEnvOverrides reads QE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QE_INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv("QE_INDEX_FORMAT"); v != "" {
		cfg.Index.Format = v
	}
	if v := os.Getenv("QE_INDEX_NORMALIZER"); v != "" {
		cfg.Index.Normalizer = v
	}
	if v := os.Getenv("QE_METADATA_BACKEND"); v != "" {
		cfg.Metadata.Backend = v
	}
	if v := os.Getenv("QE_METADATA_DIR"); v != "" {
		cfg.Metadata.Dir = v
	}
	if v := os.Getenv("QE_METADATA_SQLITE_PATH"); v != "" {
		cfg.Metadata.SQLitePath = v
	}
	if v := os.Getenv("QE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QE_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("QE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("QE_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("QE_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("QE_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("QE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("QE_ANALYTICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Enabled = enabled
		}
	}
	if v := os.Getenv("QE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("QE_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
}
