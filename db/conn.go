// Package db opens the relational database used for login history and leads
package db

import (
	"claudecode-es/backend/internal/model"
	"claudecode-es/backend/pkg/util"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens either a SQLite file at path or a PostgreSQL database at dsn and
// migrates the tables.
func New(dbType, path, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "", "sqlite":
		if path == "" {
			path = "database.db"
		}

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to %s", path)
			}
		}

		dialector = sqlite.Open(path)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("db.dsn is required when db.type is postgres")
		}

		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", dbType, err)
	}

	err = db.AutoMigrate(model.LoginEvent{}, model.Lead{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
