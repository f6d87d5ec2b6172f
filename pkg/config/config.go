package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverSQLite   = "sqlite"

	AuthModeHeader   = "header"
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

type Config struct {
	Port        string `env:"PORT"         envDefault:"3005"`
	Env         string `env:"ENV"          envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	StoreDriver   string `env:"STORE_DRIVER"      envDefault:"postgres"`
	PostgresUrl   string `env:"POSTGRES_CONN_STR"`
	SQLitePath    string `env:"SQLITE_PATH"       envDefault:"followers.db"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGO_DATABASE"    envDefault:"post_service"`
	RedisURL      string `env:"REDIS_URL"`

	AuthServiceURL     string        `env:"AUTH_SERVICE_URL"     envDefault:"http://localhost:3002"`
	CounterSyncTimeout time.Duration `env:"COUNTER_SYNC_TIMEOUT" envDefault:"5s"`
	CacheTTL           time.Duration `env:"CACHE_TTL"            envDefault:"1h"`

	AuthMode                string `env:"AUTH_MODE"                 envDefault:"header"`
	JWTSecret               string `env:"JWT_SECRET"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"   envDefault:"follow-events"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"https://api-gateway-eta-navy.vercel.app,http://localhost:3001,https://next-frontend-one-xi.vercel.app"`
}

// Load reads an optional .env file, parses the environment and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every backend the configuration selects is reachable by address.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL environment variable not set")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.PostgresUrl == "" {
			return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI environment variable not set")
		}
	case StoreDriverSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthMode {
	case AuthModeHeader:
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthModeFirebase:
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required when AUTH_MODE=firebase")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}

	if c.CounterSyncTimeout <= 0 {
		return fmt.Errorf("COUNTER_SYNC_TIMEOUT must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}
