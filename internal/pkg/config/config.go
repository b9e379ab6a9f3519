package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DB       string `env:"POSTGRES_DB" env-default:"budget_buddy"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-default:"disable"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.DB, c.SSLMode)
}

// MigrateURL is the DSN in the scheme golang-migrate registers for its pgx/v5 driver.
func (c PostgresConfig) MigrateURL(table string) string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s&x-migrations-table=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.DB, c.SSLMode, table)
}

type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" env-default:"budget_buddy"`
	Queue    string `env:"AMQP_QUEUE" env-default:"transactions.imported"`
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

type BotConfig struct {
	Token      string        `env:"BOT_TOKEN" env-required:"true"`
	GatewayURL string        `env:"GATEWAY_URL" env-default:"http://localhost:8080"`
	Timeout    time.Duration `env:"GATEWAY_TIMEOUT" env-default:"30s"`
	LogLevel   string        `env:"LOG_LEVEL" env-default:"info"`
}

// Validate rejects a BOT_TOKEN that is present but empty.
func (c *BotConfig) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("BOT_TOKEN must not be empty")
	}
	return nil
}

type GatewayConfig struct {
	HTTPPort      string `env:"HTTP_PORT" env-default:"8080"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" env-default:"10485760"`
	LogLevel      string `env:"LOG_LEVEL" env-default:"info"`
	Services      ServicesConfig
}

type ServicesConfig struct {
	UserService   string `env:"USER_SERVICE_URL" env-default:"localhost:50051"`
	LedgerService string `env:"LEDGER_SERVICE_URL" env-default:"localhost:50052"`
}

type ServiceConfig struct {
	Postgres PostgresConfig
	GRPCPort string `env:"GRPC_PORT" env-default:"50051"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

type LedgerConfig struct {
	ServiceConfig
	Storage string `env:"LEDGER_STORAGE" env-default:"postgres"`
	AMQP    AMQPConfig
}

type ClassifierConfig struct {
	Postgres  PostgresConfig
	AMQP      AMQPConfig
	Schedule  string `env:"CLASSIFIER_SCHEDULE" env-default:"@every 15m"`
	RulesPath string `env:"CLASSIFIER_RULES"`
	BatchSize int    `env:"CLASSIFIER_BATCH_SIZE" env-default:"1024"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
}

func LoadConfig(cfg interface{}) error {
	// A missing .env is fine: the environment may already be populated.
	_ = godotenv.Load()

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if v, ok := cfg.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

func MustLoadConfig(cfg interface{}) {
	if err := LoadConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
