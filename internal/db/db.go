package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kindling-app/kindling/internal/config"
)

// AllModels lists every persisted model for migration, in FK-safe order.
func AllModels() []any {
	return []any{
		&User{}, &Profile{}, &Interest{}, &UserInterest{},
		&Photo{}, &Reaction{}, &Match{}, &Session{},
	}
}

// NewDB initializes the database connection using DSN from config.
//
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey; the match pair index depends on that.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	database, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := database.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return database, nil
}
