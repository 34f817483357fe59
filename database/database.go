package database

import (
	"errors"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"print-vault/config"
	"print-vault/models"
)

var ErrUnknownDriver = errors.New("unknown database driver")

func Open(config *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(getLogLevel(config)),
	}

	return connect(config.DBDriver, config.DBPath, gormConfig)
}

func getLogLevel(config *config.Config) logger.LogLevel {
	if config.IsDebug {
		return logger.Info
	}

	return logger.Silent
}

func connect(driver, dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	switch driver {
	case "", "sqlite":
		db, err = GetDriver(dsn, gormConfig)

		if err == nil {
			err = limitSQLiteConnections(db)
		}
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	err = db.AutoMigrate(models.All()...)

	if err != nil {
		return nil, fmt.Errorf("failed to migrate the database: %w", err)
	}

	return db, nil
}

// SQLite allows a single writer; the scanner, watcher and API share one connection.
func limitSQLiteConnections(db *gorm.DB) error {
	sqlDB, err := db.DB()

	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(1)
	return nil
}
