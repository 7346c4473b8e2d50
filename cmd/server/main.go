package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opskernel/admin-api/internal/api"
	mongodb "github.com/opskernel/admin-api/internal/infrastructure/db/mongo"
	redisdb "github.com/opskernel/admin-api/internal/infrastructure/db/redis"
	"github.com/opskernel/admin-api/internal/infrastructure/lifecycle"
	"github.com/opskernel/admin-api/internal/pkg/config"
	"github.com/opskernel/admin-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Service: cfg.AppName,
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
	})

	ctx := context.Background()

	mongoRegistry := mongodb.NewRegistry(cfg.ConnectTimeout())
	redisRegistry := redisdb.NewRegistry(cfg.ConnectTimeout())

	mongoHandle, err := mongoRegistry.Acquire(ctx, lifecycle.DefaultKey, &mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	rdb, err := redisRegistry.Acquire(ctx, lifecycle.DefaultKey, &redisdb.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	e := api.NewRouter(mongoHandle.DB, rdb, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := redisRegistry.ReleaseAll(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("redis shutdown failed")
	}
	if err := mongoRegistry.ReleaseAll(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb shutdown failed")
	}
	log.Info().Msg("server stopped")
}
