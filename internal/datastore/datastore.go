// Package datastore opens the database and owns schema migration.
package datastore

import (
	"fmt"

	"github.com/devnunu/sentry-crash-report/internal/datastore/entities"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Open connects to the configured database and runs migrations.
// driver is "sqlite" (dsn is a file path) or "mysql" (dsn is a Go MySQL DSN).
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn + "?_foreign_keys=ON")
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema for all entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.AlertRule{},
		&entities.AlertCondition{},
		&entities.Report{},
		&entities.Issue{},
		&entities.NotificationLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
