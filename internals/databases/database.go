package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kanisa_backend/internals/configs"
	"kanisa_backend/internals/helpers/logger"
)

// Connect opens the postgres pool. TranslateError turns driver duplicate
// errors into gorm.ErrDuplicatedKey for the apperr classifier.
func Connect(cfg *configs.Config) (*gorm.DB, error) {
	logger.L.Info("🔌 connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger:         NewGormLogger(logger.L, cfg.DBLogLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := TunePool(db, cfg.DBMaxOpen, cfg.DBMaxIdle); err != nil {
		return nil, err
	}
	logger.L.Info("✅ DB connected")
	return db, nil
}

func TunePool(db *gorm.DB, maxOpen, maxIdle int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("pool tune: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// WarmUp pings in the background so the first request does not pay for the
// handshake.
func WarmUp(db *gorm.DB) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(context.Background(), db); err != nil {
			logger.L.Warn("warm-up ping failed", zap.Error(err))
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
