package bootstrap

import (
	"context"
	"net/http"

	"github.com/rs/cors"

	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/httplib/healthcheck"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

// NewLogger builds the process logger at the configured level. Every entry
// carries the app name, the process and the environment.
func NewLogger(cfg *config.Config, process string) (*logger.Logger, error) {
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.FromLevel(cfg.App.LogLevel)))
	if err != nil {
		return nil, err
	}
	return log.WithFields(
		logger.Field{Key: "service", Value: cfg.App.Name},
		logger.Field{Key: "process", Value: process},
		logger.Field{Key: "environment", Value: cfg.App.Environment},
	), nil
}

// ConnectRedis returns a connected redis client.
func ConnectRedis(ctx context.Context, cfg *config.Config, log logger.Interface) (redis.Client, error) {
	client := redis.NewClient(log, &cfg.Redis)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// HealthChecks builds the dependency checks reported by GET /health. Nil
// clients are left out.
func HealthChecks(pg postgresql.PostgreSQLClient, redisClient redis.Client) map[string]healthcheck.Checker {
	checks := make(map[string]healthcheck.Checker)
	if pg != nil {
		if checker, ok := pg.(interface{ Check(context.Context) error }); ok {
			checks["postgresql"] = checker.Check
		} else {
			checks["postgresql"] = pg.Ping
		}
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	return checks
}

// CORS wraps h with the configured allowed origins.
func CORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler(h)
}
