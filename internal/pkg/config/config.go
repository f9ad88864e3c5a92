package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	AppName   string `env:"APP_NAME,  default=EdgeChat Backend"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Gemini    GeminiConfig
}

type JWTConfig struct {
	AccessExpireMinutes int `env:"JWT_ACCESS_EXPIRE_MINUTES, default=15"`
	RefreshExpireDays   int `env:"JWT_REFRESH_EXPIRE_DAYS,   default=7"`
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL, required"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=edgechat"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type RateLimitConfig struct {
	Requests      int `env:"RATE_LIMIT_REQUESTS,       default=10"`
	WindowSeconds int `env:"RATE_LIMIT_WINDOW_SECONDS, default=60"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL, default=gemini-2.5-flash"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
