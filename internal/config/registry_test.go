package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registryEnv = []string{
	"CONFIG_FILE", "DB_DRIVER", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME", "DB_PING_TIMEOUT", "DB_CIRCUIT_BREAKER", "TRANSPORT",
	"KAFKA_BROKERS", "KAFKA_CONSUMER_GROUP", "KAFKA_CREATE_TOPICS", "REDIS_URL",
	"REGISTER_TIMEOUT", "PUBLISH_TIMEOUT", "METRICS_PORT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range registryEnv {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Database, cfg.Database)
	assert.Equal(t, TransportMemory, cfg.Transport)
	assert.Equal(t, 10*time.Second, cfg.RegisterTimeout)
	assert.Equal(t, 9091, cfg.MetricsPort)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://registry@db:5432/registry")
	t.Setenv("TRANSPORT", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_CONSUMER_GROUP", "registry-a")
	t.Setenv("REGISTER_TIMEOUT", "3s")
	t.Setenv("DB_PING_TIMEOUT", "0s")
	t.Setenv("DB_CIRCUIT_BREAKER", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://registry@db:5432/registry", cfg.Database.URL)
	assert.True(t, cfg.Database.CircuitBreaker)
	assert.Equal(t, TransportKafka, cfg.Transport)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "registry-a", cfg.Kafka.ConsumerGroup)
	assert.Equal(t, 3*time.Second, cfg.RegisterTimeout)
	assert.Zero(t, cfg.Database.PingTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidEnvFallsBackWithWarning(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSPORT", "carrier-pigeon")
	t.Setenv("METRICS_PORT", "70000")
	t.Setenv("PUBLISH_TIMEOUT", "0s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TransportMemory, cfg.Transport)
	assert.Equal(t, 9091, cfg.MetricsPort)
	assert.Equal(t, 5*time.Second, cfg.PublishTimeout)
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoad_FileOverlayThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: pgx
  url: postgres://file@db/registry
  max_open_conns: 40
transport: redis
redis:
  url: redis://cache:6379/1
publish_timeout: 2s
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_MAX_OPEN_CONNS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://file@db/registry", cfg.Database.URL)
	assert.Equal(t, 60, cfg.Database.MaxOpenConns, "env wins over file")
	assert.Equal(t, 10, cfg.Database.MaxIdleConns, "absent keys keep defaults")
	assert.Equal(t, TransportRedis, cfg.Transport)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.ErrorContains(t, err, "read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("database: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", bad)
	_, err = Load()
	assert.ErrorContains(t, err, "parse config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 30 }, "DB_MAX_IDLE_CONNS"},
		{"kafka without brokers", func(c *Config) { c.Transport = TransportKafka; c.Kafka.Brokers = nil }, "KAFKA_BROKERS"},
		{"kafka without group", func(c *Config) { c.Transport = TransportKafka; c.Kafka.ConsumerGroup = "" }, "KAFKA_CONSUMER_GROUP"},
		{"redis without url", func(c *Config) { c.Transport = TransportRedis; c.Redis.URL = "" }, "REDIS_URL"},
		{"unknown transport", func(c *Config) { c.Transport = "nats" }, "TRANSPORT"},
		{"negative register timeout", func(c *Config) { c.RegisterTimeout = -time.Second }, "REGISTER_TIMEOUT"},
		{"zero publish timeout", func(c *Config) { c.PublishTimeout = 0 }, "PUBLISH_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
