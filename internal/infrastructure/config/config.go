package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Admission AdmissionConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=order_ledger"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// AdmissionConfig carries the protocol knobs. They are explicit
// configuration handed to the order service, never ambient process state.
type AdmissionConfig struct {
	// FloorCents is the minimum net position a consumer may be left with
	// after a committed order, in cents.
	FloorCents int64 `env:"ADMISSION_FLOOR_CENTS, default=-100000"`
	// DelayEnabled turns on the randomized processing-window delay. Off in
	// production; on when exercising the concurrency scenarios.
	DelayEnabled bool          `env:"ADMISSION_DELAY_ENABLED, default=false"`
	DelayMin     time.Duration `env:"ADMISSION_DELAY_MIN,     default=1s"`
	DelayMax     time.Duration `env:"ADMISSION_DELAY_MAX,     default=10s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
