// Package config assembles the registry process configuration.
//
// Values are resolved in three layers: built-in defaults, an optional YAML file named
// by CONFIG_FILE, then environment variables. An invalid environment value falls back
// to the layer below it and is reported in Config.Warnings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "catchup-registry/internal/pkg/config"
)

const (
	TransportKafka  = "kafka"
	TransportRedis  = "redis"
	TransportMemory = "memory"
)

var configMetrics = pkgconfig.NewConfigMetrics("registry")

// Config holds everything cmd/registry needs to wire the process.
type Config struct {
	Database DatabaseConfig `yaml:"database"`

	// Transport selects the event transport: kafka, redis or memory.
	Transport string      `yaml:"transport"`
	Kafka     KafkaConfig `yaml:"kafka"`
	Redis     RedisConfig `yaml:"redis"`

	// RegisterTimeout bounds each registration round trip. Zero disables it.
	RegisterTimeout time.Duration `yaml:"register_timeout"`
	// PublishTimeout bounds each company_created publish.
	PublishTimeout time.Duration `yaml:"publish_timeout"`

	MetricsPort int    `yaml:"metrics_port"`
	LogLevel    string `yaml:"log_level"`

	// Warnings lists the environment values that were rejected.
	Warnings []string `yaml:"-"`
}

type DatabaseConfig struct {
	// Driver is pgx or sqlite3.
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	// PingTimeout bounds the startup ping. Zero waits as long as the process does.
	PingTimeout time.Duration `yaml:"ping_timeout"`
	// CircuitBreaker guards the pool with a breaker that trips on transport failures only.
	CircuitBreaker bool `yaml:"circuit_breaker"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	ConsumerGroup string   `yaml:"consumer_group"`
	// CreateTopics creates company_created at startup when missing.
	CreateTopics bool `yaml:"create_topics"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// Default returns the built-in configuration: a local SQLite file and the
// in-process transport.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:          "sqlite3",
			URL:             "registry.db",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			PingTimeout:     30 * time.Second,
		},
		Transport: TransportMemory,
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "catchup-registry",
			CreateTopics:  true,
		},
		Redis:           RedisConfig{URL: "redis://localhost:6379/0"},
		RegisterTimeout: 10 * time.Second,
		PublishTimeout:  5 * time.Second,
		MetricsPort:     9091,
		LogLevel:        "info",
	}
}

// Load resolves the configuration and validates it.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	configMetrics.RecordLoadTimestamp()
	configMetrics.SetFallbackActive(len(cfg.Warnings) > 0)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry configuration: %w", err)
	}
	return &cfg, nil
}

// mergeFile overlays the YAML document at path. Keys absent from the file keep their value.
func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	poolSize := func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 10000) }
	port := func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 65535) }
	nonNegative := func(d time.Duration) error { return pkgconfig.ValidateDuration(d, 0, time.Hour) }

	c.Database.Driver = c.envString("DB_DRIVER", c.Database.Driver, pkgconfig.ValidateOneOf("pgx", "postgres", "postgresql", "sqlite3", "sqlite"))
	c.Database.URL = pkgconfig.LoadEnvString("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = c.envInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns, poolSize)
	c.Database.MaxIdleConns = c.envInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns, poolSize)
	c.Database.ConnMaxLifetime = c.envDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration)
	c.Database.ConnMaxIdleTime = c.envDuration("DB_CONN_MAX_IDLE_TIME", c.Database.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration)
	c.Database.PingTimeout = c.envDuration("DB_PING_TIMEOUT", c.Database.PingTimeout, nonNegative)
	c.Database.CircuitBreaker = c.envBool("DB_CIRCUIT_BREAKER", c.Database.CircuitBreaker)

	c.Transport = c.envString("TRANSPORT", c.Transport, pkgconfig.ValidateOneOf(TransportKafka, TransportRedis, TransportMemory))
	c.Kafka.Brokers = pkgconfig.LoadEnvList("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.ConsumerGroup = pkgconfig.LoadEnvString("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	c.Kafka.CreateTopics = c.envBool("KAFKA_CREATE_TOPICS", c.Kafka.CreateTopics)
	c.Redis.URL = pkgconfig.LoadEnvString("REDIS_URL", c.Redis.URL)

	c.RegisterTimeout = c.envDuration("REGISTER_TIMEOUT", c.RegisterTimeout, nonNegative)
	c.PublishTimeout = c.envDuration("PUBLISH_TIMEOUT", c.PublishTimeout, pkgconfig.ValidatePositiveDuration)
	c.MetricsPort = c.envInt("METRICS_PORT", c.MetricsPort, port)
	c.LogLevel = c.envString("LOG_LEVEL", c.LogLevel, pkgconfig.ValidateOneOf("debug", "info", "warn", "error"))
}

func (c *Config) record(field string, r pkgconfig.ConfigLoadResult) {
	if !r.FallbackApplied {
		return
	}
	configMetrics.RecordValidationError(field)
	configMetrics.RecordFallback(field)
	c.Warnings = append(c.Warnings, r.Warnings...)
}

func (c *Config) envString(key, def string, v func(string) error) string {
	r := pkgconfig.LoadEnvWithFallback(key, def, v)
	c.record(key, r)
	return r.Value.(string)
}

func (c *Config) envInt(key string, def int, v func(int) error) int {
	r := pkgconfig.LoadEnvInt(key, def, v)
	c.record(key, r)
	return r.Value.(int)
}

func (c *Config) envDuration(key string, def time.Duration, v func(time.Duration) error) time.Duration {
	r := pkgconfig.LoadEnvDuration(key, def, v)
	c.record(key, r)
	return r.Value.(time.Duration)
}

func (c *Config) envBool(key string, def bool) bool {
	r := pkgconfig.LoadEnvBool(key, def)
	c.record(key, r)
	return r.Value.(bool)
}

// Validate checks the combinations the loaders cannot check one value at a time.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) must not exceed DB_MAX_OPEN_CONNS (%d)", c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	switch c.Transport {
	case TransportKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS cannot be empty when TRANSPORT=kafka")
		}
		if c.Kafka.ConsumerGroup == "" {
			return fmt.Errorf("KAFKA_CONSUMER_GROUP cannot be empty when TRANSPORT=kafka")
		}
	case TransportRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL cannot be empty when TRANSPORT=redis")
		}
	case TransportMemory:
	default:
		return fmt.Errorf("unknown TRANSPORT %q", c.Transport)
	}
	if c.RegisterTimeout < 0 {
		return fmt.Errorf("REGISTER_TIMEOUT must not be negative")
	}
	if c.PublishTimeout <= 0 {
		return fmt.Errorf("PUBLISH_TIMEOUT must be positive")
	}
	return nil
}
