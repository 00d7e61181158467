package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Akhileshait/tradenet/internal/api/middleware"
	orderApi "github.com/Akhileshait/tradenet/internal/api/order"
	"github.com/Akhileshait/tradenet/internal/auth"
	"github.com/Akhileshait/tradenet/internal/bootstrap"
	"github.com/Akhileshait/tradenet/internal/metrics"
	"github.com/Akhileshait/tradenet/pkg/bus"
	"github.com/Akhileshait/tradenet/pkg/config"
	"github.com/Akhileshait/tradenet/pkg/httplib/healthcheck"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
	"github.com/Akhileshait/tradenet/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := bootstrap.NewLogger(cfg, "gateway")
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
		Config:     cfg,
		Logger:     log,
		PostgreSQL: pgClient,
		Redis:      redisClient,
		Bus:        orderBus,
	})

	tokens := auth.NewTokens(cfg.Auth.JWTSecret)
	health := healthcheck.New(5*time.Second, bootstrap.HealthChecks(pgClient, redisClient))

	r := mux.NewRouter()
	r.Handle("/health", health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	orderApi.NewHandler(b.Usecase.IntakeUsecase, log).Register(r, middleware.Authenticate(tokens))

	var handler http.Handler = r
	handler = middleware.AccessLog(log)(handler)
	handler = middleware.RequestID(handler)
	handler = bootstrap.CORS(cfg, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info("Intake gateway listening", logger.Field{Key: "addr", Value: server.Addr})
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "shutdown_http"})
	}

	log.Info("Intake gateway shutdown complete")
}
