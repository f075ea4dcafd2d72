package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/codeup/novabook/internal"
)

// sqlxDriver is the database/sql driver name registered by pgx/v5/stdlib.
const sqlxDriver = "pgx"

// initDB opens the gorm handle used by the write-side repositories and an
// sqlx handle for the report queries, both on one connection pool.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	level := gormlogger.Warn
	if cfg.LogQueries {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.GetDSN()}), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gdb, sqlx.NewDb(sqlDB, sqlxDriver), nil
}
