package bootstrap

import (
	"github.com/Akhileshait/tradenet/internal/domain/connection"
	exchangev1 "github.com/Akhileshait/tradenet/internal/domain/exchange/v1"
	"github.com/Akhileshait/tradenet/internal/infrastructure/redis/lock"
	"github.com/Akhileshait/tradenet/internal/registry"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

// Bootstrap wires the components shared by the gateway, execution worker
// and event router.
type Bootstrap struct {
	Config     *config.Config
	Logger     logger.Interface
	Repository Repository
	Usecase    Usecase

	PostgreSQL postgresql.PostgreSQLClient
	DBTx       postgresql.Transaction
	Redis      redis.Client
	Bus        bus.Bus
	Exchange   exchangev1.Client
	Locker     lock.OrderLocker
	Registry   connection.Registry
}

// BootstrapConfig is the config for the bootstrap. Nil dependencies are
// skipped, along with the usecases that need them.
type BootstrapConfig struct {
	Config     *config.Config
	Logger     logger.Interface
	PostgreSQL postgresql.PostgreSQLClient
	Redis      redis.Client
	Bus        bus.Bus
	Exchange   exchangev1.Client

	// Repository, DBTx and Locker replace the defaults built from PostgreSQL
	// and Redis when set.
	Repository *Repository
	DBTx       postgresql.Transaction
	Locker     lock.OrderLocker
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config BootstrapConfig) Bootstrap {
	b.Config = config.Config
	b.Logger = config.Logger
	b.PostgreSQL = config.PostgreSQL
	b.Redis = config.Redis
	b.Bus = config.Bus
	b.Exchange = config.Exchange
	b.DBTx = config.DBTx
	b.Locker = config.Locker
	b.Registry = registry.New(config.Logger)

	if b.DBTx == nil && b.PostgreSQL != nil {
		b.DBTx = postgresql.NewTransaction(b.PostgreSQL)
	}
	if b.Locker == nil && b.Redis != nil {
		b.Locker = lock.NewOrderLocker(b.Redis, &b.Config.Redis, b.Config.Worker.LockTTL, b.Logger)
	}

	if config.Repository != nil {
		b.Repository = *config.Repository
	} else {
		b.registerRepository()
	}
	b.registerUsecase()

	return *b
}
