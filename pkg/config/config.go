package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/bus/kafka"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

// Config represents the configuration shared by the gateway, execution
// worker and event router processes.
type Config struct {
	App        AppConfig         `envPrefix:"APP_"`
	HTTP       HTTPConfig        `envPrefix:"HTTP_"`
	Auth       AuthConfig        `envPrefix:"AUTH_"`
	Bus        bus.Config        `envPrefix:"BUS_"`
	Redis      redis.Config      `envPrefix:"REDIS_"`
	Kafka      kafka.Config      `envPrefix:"KAFKA_"`
	PostgreSQL postgresql.Config `envPrefix:"POSTGRES_"`
	Exchange   ExchangeConfig    `envPrefix:"EXCHANGE_"`
	Worker     WorkerConfig      `envPrefix:"WORKER_"`
	WS         WSConfig          `envPrefix:"WS_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name            string        `env:"NAME" envDefault:"tradenet"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// HTTPConfig configures the intake gateway HTTP server.
type HTTPConfig struct {
	Port           int           `env:"PORT" envDefault:"3000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`
}

// ExchangeConfig configures the exchange REST client.
type ExchangeConfig struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://testnet.binance.vision"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"3"`
	RecvWindow int64         `env:"RECV_WINDOW" envDefault:"5000"`
}

// WorkerConfig configures the execution worker.
type WorkerConfig struct {
	Group       string        `env:"GROUP" envDefault:"execution"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"8"`
	LockTTL     time.Duration `env:"LOCK_TTL" envDefault:"60s"`
	GRPCPort    int           `env:"GRPC_PORT" envDefault:"7777"`
	MetricsPort int           `env:"METRICS_PORT" envDefault:"9100"`
}

// WSConfig configures the event router websocket server.
type WSConfig struct {
	Port         int           `env:"PORT" envDefault:"8080"`
	Group        string        `env:"GROUP" envDefault:"event-router"`
	PingInterval time.Duration `env:"PING_INTERVAL" envDefault:"54s"`
	PongWait     time.Duration `env:"PONG_WAIT" envDefault:"60s"`
	WriteWait    time.Duration `env:"WRITE_WAIT" envDefault:"10s"`
	SendBuffer   int           `env:"SEND_BUFFER" envDefault:"256"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
