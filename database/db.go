package database

import (
	"context"
	"fmt"
	"log/slog" // use slog for structured logging
	"time"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	// TranslateError maps driver errors onto gorm.ErrDuplicatedKey and friends.
	TranslateError bool
	LogLevel       gormlogger.LogLevel
	MaxOpenConns   int
}

func DefaultOptions() Options {
	return Options{
		TranslateError: true,
		LogLevel:       gormlogger.Warn,
		MaxOpenConns:   20,
	}
}

// Connect opens the Postgres pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string, opts Options, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: opts.TranslateError,
		Logger:         gormlogger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns / 2)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		// close the handle if ping fails to avoid resource leak
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Migrate creates or updates every table, index and constraint the models declare.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
