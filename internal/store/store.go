// Package store opens the repositories of the configured database driver.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/repository"
	"storefront/internal/repository/mongostore"
)

// Stores are the repositories of the configured DB_DRIVER with the
// database health check and shutdown hook.
type Stores struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Ping     func(ctx context.Context) error
	Close    func(ctx context.Context) error
}

// Open connects to the database selected by cfg.DBDriver and prepares its
// schema: migrations for MySQL and SQLite, indexes for MongoDB.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			return nil, err
		}
		return &Stores{
			Users:    mongostore.NewUserRepository(database),
			Products: mongostore.NewProductRepository(database),
			Ping: func(ctx context.Context) error {
				return database.Client().Ping(ctx, nil)
			},
			Close: database.Client().Disconnect,
		}, nil

	case config.DriverMySQL, config.DriverSQLite:
		var (
			gormDB *gorm.DB
			err    error
		)
		if cfg.DBDriver == config.DriverMySQL {
			gormDB, err = db.NewMySQL(cfg.MySQLDSN)
		} else {
			gormDB, err = db.NewSQLite(cfg.SQLitePath)
		}
		if err != nil {
			return nil, err
		}

		// Drop tables if RESET_DB environment variable is set
		if os.Getenv("RESET_DB") == "true" {
			logger.Warn().Msg("RESET_DB=true detected, dropping all tables")
			if err := db.Reset(gormDB); err != nil {
				return nil, err
			}
		}
		if err := db.Migrate(gormDB); err != nil {
			return nil, err
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:    repository.NewUserRepository(gormDB),
			Products: repository.NewProductRepository(gormDB),
			Ping:     sqlDB.PingContext,
			Close: func(context.Context) error {
				return sqlDB.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
