package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// LogLevel maps "silent", "error", "warn" or "info" to gorm's logger level.
// Anything else falls back to warn.
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Config returns the gorm settings shared by every dialect. TranslateError
// turns unique index violations into gorm.ErrDuplicatedKey.
func Config(level string) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(LogLevel(level)),
		TranslateError: true,
	}
}

// Connect opens MySQL, waiting for the server to come up, and syncs the schema.
func Connect(ctx context.Context, dsn, logLevel string) (*gorm.DB, error) {
	// 1. Credentials come from config (DB_DSN)
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}

	// 2. Connect with GORM (Wait for DB to be ready)
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(mysql.Open(dsn), Config(logLevel))
		if err == nil {
			break
		}
		logging.WithContext(ctx).WithError(err).Warnf("Failed to connect to database. Retrying in %s... (%d/%d)", retryDelay, i+1, connectAttempts)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", connectAttempts, err)
	}
	logging.WithContext(ctx).Info("Successfully connected to MySQL")

	// 3. Auto-Migrate
	if err := Migrate(db); err != nil {
		return nil, err
	}
	logging.WithContext(ctx).Info("Database schema synced")
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Sale{},
		&models.Purchase{},
		&models.Activity{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
