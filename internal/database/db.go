package database

import (
	"fmt"

	"github.com/justsurfingit/jacker/internal/config"
	"github.com/justsurfingit/jacker/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens Postgres from config and, unless disabled, migrates the schema.
// The returned handle is meant to be built once in main and passed down.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(postgres.Open(cfg.DSN()))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("database connection established", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

	if cfg.AutoMigrate {
		log.Info("running migrations")
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Open wraps gorm.Open with the settings every caller (including tests) shares.
// Every write is a single-row statement, so gorm's implicit transactions are off.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.TrackedJob{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
