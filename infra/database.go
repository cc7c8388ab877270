// Package infra wires external infrastructure: the database connection and
// schema migration.
package infra

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amirasaad/walletfx/infra/repository/balance"
	"github.com/amirasaad/walletfx/infra/repository/transaction"
	"github.com/amirasaad/walletfx/infra/repository/user"
	"github.com/amirasaad/walletfx/pkg/config"
)

// NewDBConnection opens a pooled Postgres connection. Statement logging is
// only enabled in development.
func NewDBConnection(cfg config.DB, appEnv string) (*gorm.DB, error) {
	if cfg.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	conn, err := gorm.Open(postgres.Open(cfg.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return conn, nil
}

// Migrate creates or updates the ledger schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&balance.Balance{},
		&transaction.Entry{},
	)
}
