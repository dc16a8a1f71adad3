package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"noteshelf/config"
	"noteshelf/migrations"
	"noteshelf/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm opens the relational store selected by cfg.Driver and brings its
// schema up to date.
func OpenGorm(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch cfg.Driver {
	case config.DriverPostgres:
		sqlDB, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		applyPool(sqlDB, cfg)
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := MigrateUp(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)

	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		applyPool(sqlDB, cfg)
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("driver %q is not relational", cfg.Driver)
	}
}

// MigrateUp applies the embedded goose migrations to a postgres database.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// AutoMigrate creates the schema from the models; used for sqlite.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Note{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func applyPool(db *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}
}
