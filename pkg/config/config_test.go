package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost:5432/followers")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "3005", cfg.Port)
	require.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	require.Equal(t, AuthModeHeader, cfg.AuthMode)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, 5*time.Second, cfg.CounterSyncTimeout)
	require.Equal(t, "http://localhost:3002", cfg.AuthServiceURL)
	require.Len(t, cfg.CORSOrigins, 3)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	base := Config{
		RedisURL:           "redis://localhost:6379",
		StoreDriver:        StoreDriverSQLite,
		AuthMode:           AuthModeHeader,
		CounterSyncTimeout: time.Second,
		CacheTTL:           time.Hour,
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"missing redis":        func(c *Config) { c.RedisURL = "" },
		"postgres without dsn": func(c *Config) { c.StoreDriver = StoreDriverPostgres },
		"mongo without uri":    func(c *Config) { c.StoreDriver = StoreDriverMongo },
		"unknown driver":       func(c *Config) { c.StoreDriver = "cassandra" },
		"jwt without secret":   func(c *Config) { c.AuthMode = AuthModeJWT },
		"firebase without key": func(c *Config) { c.AuthMode = AuthModeFirebase },
		"unknown auth mode":    func(c *Config) { c.AuthMode = "basic" },
		"zero timeout":         func(c *Config) { c.CounterSyncTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
