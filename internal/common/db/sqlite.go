package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

const DriverSQLite = "sqlite"

// OpenSQLite opens an embedded database. path may be ":memory:".
func OpenSQLite(path string, log *logger.Logger) (*gorm.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// sqlite serializes writers; one connection also keeps ":memory:" databases alive.
	sqlDB.SetMaxOpenConns(1)

	if log != nil {
		log.Infof("sqlite database opened: %s", path)
	}
	return gdb, nil
}

func AutoMigrateSQLite(gdb *gorm.DB, models ...any) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	metrics.DBMigrationsApplied.WithLabelValues(DriverSQLite).Inc()
	return nil
}
