package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akhileshait/tradenet/pkg/bus"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 8080, cfg.WS.Port)
	assert.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, bus.DriverRedis, cfg.Bus.Driver)
	assert.Equal(t, 10*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "tradenet", cfg.PostgreSQL.Database)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BUS_DRIVER", "kafka")
	t.Setenv("BUS_MAX_DELIVERIES", "7")
	t.Setenv("BUS_VISIBILITY_TIMEOUT", "45s")
	t.Setenv("WORKER_CONCURRENCY", "16")
	t.Setenv("EXCHANGE_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, bus.DriverKafka, cfg.Bus.Driver)
	assert.Equal(t, 7, cfg.Bus.MaxDeliveries)
	assert.Equal(t, 45*time.Second, cfg.Bus.VisibilityTimeout)
	assert.Equal(t, 16, cfg.Worker.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}
