// Package config loads service settings from the environment.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const (
	DriverTables = "tables"
	DriverMemory = "memory"
)

type Config struct {
	Debug   bool `env:"DEBUG" env-default:"false"`
	HTTP    HTTPConfig
	Storage StorageConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Gist    GistConfig
}

type HTTPConfig struct {
	Port            string        `env:"PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type StorageConfig struct {
	Driver           string `env:"STORAGE_DRIVER" env-default:"tables" env-description:"tables or memory"`
	ConnectionString string `env:"STORAGE_CONNECTION_STRING"`
	Table            string `env:"TRACKER_TABLE" env-default:"tracker"`
	ActivityQueue    string `env:"ACTIVITY_QUEUE" env-description:"optional queue receiving activity events"`
	Init             bool   `env:"STORAGE_INIT" env-default:"true"`
}

type RedisConfig struct {
	ConnectionString string        `env:"REDIS_CONNECTION_STRING"`
	IdempotencyTTL   time.Duration `env:"EXPORT_IDEMPOTENCY_TTL" env-default:"24h"`
}

// AuthConfig holds the static credential pair guarding project routes.
type AuthConfig struct {
	Username string `env:"AUTH_USERNAME" env-required:"true"`
	Password string `env:"AUTH_PASSWORD" env-required:"true"`
}

type GistConfig struct {
	Token   string `env:"GITHUB_TOKEN"`
	BaseURL string `env:"GITHUB_API_URL" env-default:"https://api.github.com"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverTables:
		if c.Storage.ConnectionString == "" || c.Storage.Table == "" {
			return errors.New("missing storage config")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.ActivityQueue != "" && c.Storage.ConnectionString == "" {
		return errors.New("ACTIVITY_QUEUE requires STORAGE_CONNECTION_STRING")
	}
	if c.Redis.IdempotencyTTL <= 0 {
		return errors.New("invalid EXPORT_IDEMPOTENCY_TTL: must be greater than zero")
	}
	return nil
}

// RedisOptions parses the connection string either as a redis:// URL or in
// the "host:port,password=...,ssl=true" form. It returns nil when Redis is
// not configured.
func (c RedisConfig) RedisOptions() (*redis.Options, error) {
	if c.ConnectionString == "" {
		return nil, nil
	}
	if opts, err := redis.ParseURL(c.ConnectionString); err == nil {
		return opts, nil
	}
	parts := strings.Split(c.ConnectionString, ",")
	if strings.Contains(parts[0], "://") || strings.TrimSpace(parts[0]) == "" {
		return nil, fmt.Errorf("invalid REDIS_CONNECTION_STRING")
	}
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts, nil
}
