package bootstrap

import (
	"fmt"

	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/bus/kafka"
	"github.com/Akhileshait/tradenet/pkg/bus/memory"
	"github.com/Akhileshait/tradenet/pkg/bus/redisstream"
	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

// NewBus builds the bus selected by cfg.Bus.Driver. The redis driver needs
// a connected redis client.
func NewBus(cfg *config.Config, redisClient redis.Client, log logger.Interface) (bus.Bus, error) {
	switch cfg.Bus.Driver {
	case bus.DriverRedis:
		if redisClient == nil {
			return nil, errors.New(errors.BusConfigError, "redis bus requires a redis client", "driver")
		}
		return redisstream.New(redisClient, cfg.Bus, log), nil
	case bus.DriverKafka:
		return kafka.New(cfg.Kafka, cfg.Bus, log), nil
	case bus.DriverMemory:
		return memory.New(cfg.Bus, log), nil
	default:
		return nil, errors.New(errors.BusConfigError, fmt.Sprintf("unknown bus driver %q", cfg.Bus.Driver), "driver")
	}
}
