package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP       HTTPConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Auth       AuthConfig
	Ledger     LedgerConfig
	Settlement SettlementConfig
	Cache      CacheConfig
	Log        LogConfig
	Telemetry  TelemetryConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR"             env-default:":8080"`
	MetricsAddr     string        `env:"METRICS_ADDR"          env-default:":9090"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"     env-default:"host=localhost user=postgres password=postgres dbname=rewear sslmode=disable"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" env-default:"true"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS"     env-default:"localhost:9092" env-separator:","`
	SwapsTopic string   `env:"KAFKA_SWAPS_TOPIC" env-default:"swaps"`
	ItemsTopic string   `env:"KAFKA_ITEMS_TOPIC" env-default:"items"`
	GroupID    string   `env:"KAFKA_GROUP_ID"    env-default:"rewear-cache"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-default:"supersecret"`
	JWTTTL    time.Duration `env:"JWT_TTL"    env-default:"24h"`
}

type LedgerConfig struct {
	StartingBalance int32 `env:"STARTING_BALANCE" env-default:"100"`
}

type SettlementConfig struct {
	MaxRetries   int           `env:"SETTLEMENT_MAX_RETRIES"   env-default:"3"`
	RetryBackoff time.Duration `env:"SETTLEMENT_RETRY_BACKOFF" env-default:"50ms"`
}

type CacheConfig struct {
	ItemTTL       time.Duration `env:"ITEM_CACHE_TTL"    env-default:"1h"`
	BalanceTTL    time.Duration `env:"BALANCE_CACHE_TTL" env-default:"1m"`
	AcceptLockTTL time.Duration `env:"ACCEPT_LOCK_TTL"   env-default:"10s"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

type TelemetryConfig struct {
	Enabled      bool   `env:"OTEL_ENABLED"                env-default:"false"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4318"`
	ServiceName  string `env:"SERVICE_NAME"                env-default:"rewear"`
}

// Load reads an optional .env file, then the environment, falling back to the
// env-default tags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	slog.Info("config loaded",
		"http_addr", cfg.HTTP.Addr,
		"redis_addr", cfg.Redis.Addr,
		"kafka_brokers", cfg.Kafka.Brokers)
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Ledger.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE must be >= 0 (got %d)", c.Ledger.StartingBalance)
	}
	if c.Settlement.MaxRetries < 0 {
		return fmt.Errorf("SETTLEMENT_MAX_RETRIES must be >= 0 (got %d)", c.Settlement.MaxRetries)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	return nil
}
