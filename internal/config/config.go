package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string `env:"ENV" env-default:"dev"`
	AppPort string `env:"APP_PORT" env-default:"8080"`

	// Base URL of the identity-and-wallet platform all three
	// downstream clients talk to.
	PlatformBaseURL string        `env:"PLATFORM_BASE_URL" env-required:"true"`
	PlatformTimeout time.Duration `env:"PLATFORM_TIMEOUT" env-default:"5s"`

	// SessionStore selects the session driver: "redis", "postgres"
	// or "memory".
	SessionStore string        `env:"SESSION_STORE" env-default:"redis"`
	SessionTTL   time.Duration `env:"SESSION_TTL" env-default:"24h"`

	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	// Credential-attempt throttle, applied per phone number before
	// Activate and Login reach the network.
	LoginRatePerSec float64 `env:"LOGIN_RATE_PER_SEC" env-default:"1"`
	LoginBurst      int     `env:"LOGIN_BURST" env-default:"5"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
