package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	APIServerAddr   string        `env:"API_SERVER_ADDR" envDefault:":8080"`
	AdminServerAddr string        `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`
	PostgresURL     string        `env:"POSTGRES_URL,required,notEmpty"`
	RedisAddr       string        `env:"REDIS_ADDR,required,notEmpty"` // redis://host:port/db
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiry       time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	CheckNameRPS    float64       `env:"CHECK_NAME_RPS" envDefault:"5"`
	CheckNameBurst  int           `env:"CHECK_NAME_BURST" envDefault:"10"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"65536"` // 64KB
	SSEHeartbeat    time.Duration `env:"SSE_HEARTBEAT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
