package infrastructure

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-directory/internal/config"
	"user-directory/pkg/logger"
)

// Diagnostics drivers
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewDiagnosticsDatabase opens the database backing the diagnostics store.
// It returns nil when the store is disabled.
func NewDiagnosticsDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Diagnostics.Driver {
	case DriverNone, "":
		l.Info("diagnostics store disabled")
		return nil, nil
	case DriverSQLite:
		dialector = sqlite.Open(cfg.Diagnostics.DSN)
	case DriverPostgres:
		dialector = pgdriver.Open(cfg.Diagnostics.DSN)
	default:
		return nil, fmt.Errorf("unsupported diagnostics driver %q", cfg.Diagnostics.Driver)
	}

	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQueryThreshold(), cfg.Logger.Level)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to diagnostics database: %w", err)
	}

	// Get underlying sql.DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Diagnostics.Driver == DriverSQLite {
		// a single writer; an in-memory database also lives in one connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	l.Info("diagnostics database connected", zap.String("driver", cfg.Diagnostics.Driver))

	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
