package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/kindling-app/kindling/internal/app"
	"github.com/kindling-app/kindling/internal/cache"
	"github.com/kindling-app/kindling/internal/config"
	"github.com/kindling-app/kindling/internal/db"
	"github.com/kindling-app/kindling/internal/logger"
	"github.com/kindling-app/kindling/internal/server"
	"github.com/kindling-app/kindling/internal/service/accounts"
	"github.com/kindling-app/kindling/internal/service/discover"
	"github.com/kindling-app/kindling/internal/service/matches"
	"github.com/kindling-app/kindling/internal/service/reactions"
)

func main() {
	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	public := []server.Registrar{
		accounts.NewPublicRegistrar(appCtx),
	}
	protected := []server.Registrar{
		accounts.NewRegistrar(appCtx),
		reactions.NewRegistrar(appCtx),
		matches.NewRegistrar(appCtx),
		discover.NewRegistrar(appCtx),
	}

	router := server.NewRouter(appCtx, public, protected)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting HTTP server", "addr", cfg.HTTP.Host+":"+cfg.HTTP.Port)
	if err := server.Start(ctx, appCtx, router); err != nil {
		log.Error("server exited", "err", err)
	}
}
