package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppName   string `env:"APP_NAME,   default=admin-api"`
	AppSecret string `env:"APP_SECRET, required"`
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`

	// TokenHeader is the request header carrying the bearer token.
	TokenHeader string `env:"TOKEN_HEADER, default=Authorization"`
	// TokenExpireSeconds is the session TTL applied at token issuance.
	TokenExpireSeconds int `env:"TOKEN_EXPIRE_TIME, default=1800"`
	// SuperAdminID identifies the principal exempt from role and
	// permission checks.
	SuperAdminID string `env:"SUPER_ADMIN_ID, default=1"`
	// ConnectTimeoutSeconds bounds each backend connection attempt.
	ConnectTimeoutSeconds int `env:"CONNECT_TIMEOUT, default=5"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_api"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB,   default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// TokenTTL returns the session lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpireSeconds) * time.Second
}

// ConnectTimeout returns the backend connection bound as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// Load reads configuration from environment variables using go-envconfig.
// A missing required setting is fatal at startup, never retried.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
