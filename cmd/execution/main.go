package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/Akhileshait/tradenet/internal/bootstrap"
	submitConsumer "github.com/Akhileshait/tradenet/internal/consumer/submit"
	"github.com/Akhileshait/tradenet/internal/infrastructure/exchange/binance"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/grpclib/health"
	"github.com/Akhileshait/tradenet/pkg/httplib/healthcheck"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
)

const serviceName = "tradenet.execution"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	cfg.Bus.Concurrency = cfg.Worker.Concurrency

	log, err := bootstrap.NewLogger(cfg, "execution")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient, err := postgresql.NewClient(ctx, cfg.PostgreSQL)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_postgresql"})
		os.Exit(1)
	}
	defer pgClient.Close()

	// The processing lock always needs redis, whatever the bus driver.
	redisClient, err := bootstrap.ConnectRedis(ctx, cfg, log)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
		os.Exit(1)
	}
	defer redisClient.Disconnect(context.Background())

	orderBus, err := bootstrap.NewBus(cfg, redisClient, log)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "create_bus"})
		os.Exit(1)
	}
	defer orderBus.Close()

	exchange := binance.NewClient(binance.Config{
		BaseURL:    cfg.Exchange.BaseURL,
		Timeout:    cfg.Exchange.Timeout,
		MaxRetries: cfg.Exchange.MaxRetries,
		RecvWindow: cfg.Exchange.RecvWindow,
	}, log)

	b := (&bootstrap.Bootstrap{}).Init(bootstrap.BootstrapConfig{
		Config:     cfg,
		Logger:     log,
		PostgreSQL: pgClient,
		Redis:      redisClient,
		Bus:        orderBus,
		Exchange:   exchange,
	})

	healthServer := health.NewServer()
	healthServer.InitService(serviceName)
	grpcServer := grpc.NewServer()
	healthServer.Register(grpcServer)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Worker.GRPCPort))
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "listen_grpc"})
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler: metrics.Handler(),
	}

	checks := bootstrap.HealthChecks(pgClient, redisClient)
	consumer := submitConsumer.NewConsumer(orderBus, cfg.Worker.Group, b.Usecase.ExecutionUsecase, log)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		log.Info("Worker health server listening", logger.Field{Key: "addr", Value: lis.Addr().String()})
		if err := grpcServer.Serve(lis); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "serve_grpc"})
		}
	}()
	go func() {
		defer wg.Done()
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, logger.Field{Key: "action", Value: "serve_metrics"})
		}
	}()
	go func() {
		defer wg.Done()
		watchDependencies(ctx, healthServer, checks, log)
	}()
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "start_submit_consumer"})
			cancel()
		}
	}()

	log.Info("Execution worker started", logger.Field{Key: "concurrency", Value: cfg.Worker.Concurrency})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})
	case <-ctx.Done():
	}

	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "shutdown_metrics"})
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Execution worker shutdown complete")
	case <-shutdownCtx.Done():
		grpcServer.Stop()
		log.Warn("Shutdown timed out with commands in flight")
	}
}

// watchDependencies reports NOT_SERVING while any dependency check fails.
func watchDependencies(ctx context.Context, server *health.Server, checks map[string]healthcheck.Checker, log logger.Interface) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		serving := true
		for name, check := range checks {
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := check(checkCtx)
			cancel()
			if err != nil {
				serving = false
				log.Warn("Dependency unhealthy",
					logger.Field{Key: "dependency", Value: name},
					logger.Field{Key: "error", Value: err.Error()},
				)
			}
		}
		server.SetServing(serviceName, serving)
	}
}
