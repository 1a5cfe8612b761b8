package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/cache"
	"github.com/kindling-app/kindling/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, config).
// It is built once at process start and threaded through every service;
// nothing in the app reaches for process-wide singletons.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}
