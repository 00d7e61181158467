package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Akhileshait/tradenet/internal/api/middleware"
	"github.com/Akhileshait/tradenet/internal/api/stream"
	"github.com/Akhileshait/tradenet/internal/auth"
	"github.com/Akhileshait/tradenet/internal/bootstrap"
	statusConsumer "github.com/Akhileshait/tradenet/internal/consumer/status"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/httplib/healthcheck"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := bootstrap.NewLogger(cfg, "event-router")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient redis.Client
	if cfg.Bus.Driver == bus.DriverRedis {
		redisClient, err = bootstrap.ConnectRedis(ctx, cfg, log)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
			os.Exit(1)
		}
		defer redisClient.Disconnect(context.Background())
	}

	orderBus, err := bootstrap.NewBus(cfg, redisClient, log)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "create_bus"})
		os.Exit(1)
	}
	defer orderBus.Close()

	b := (&bootstrap.Bootstrap{}).Init(bootstrap.BootstrapConfig{
		Config: cfg,
		Logger: log,
		Redis:  redisClient,
		Bus:    orderBus,
	})

	tokens := auth.NewTokens(cfg.Auth.JWTSecret)
	streamHandler := stream.NewHandler(tokens, b.Registry, stream.Config{
		PingInterval: cfg.WS.PingInterval,
		PongWait:     cfg.WS.PongWait,
		WriteWait:    cfg.WS.WriteWait,
		SendBuffer:   cfg.WS.SendBuffer,
	}, cfg.HTTP.AllowedOrigins, log)

	r := mux.NewRouter()
	r.Handle("/ws", streamHandler).Methods(http.MethodGet)
	r.Handle("/health", healthcheck.New(5*time.Second, bootstrap.HealthChecks(nil, redisClient))).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WS.Port),
		Handler: middleware.RequestID(r),
	}

	consumer := statusConsumer.NewConsumer(orderBus, cfg.WS.Group, b.Usecase.RouterUsecase, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "start_status_consumer"})
			cancel()
		}
	}()

	go func() {
		log.Info("Event router listening", logger.Field{Key: "addr", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, logger.Field{Key: "action", Value: "serve_http"})
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	// Hijacked websocket connections are not tracked by Shutdown and close
	// with the process.
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "shutdown_http"})
	}

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Event router shutdown complete")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timed out with events in flight")
	}
}
