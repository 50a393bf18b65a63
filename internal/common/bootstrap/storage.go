package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"gorm.io/gorm"

	authrepo "github.com/AlibekovAA/toggle-task/internal/auth/repository"
	"github.com/AlibekovAA/toggle-task/internal/common/config"
	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	"github.com/AlibekovAA/toggle-task/internal/common/db"
	commonhttp "github.com/AlibekovAA/toggle-task/internal/common/http"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
	taskrepo "github.com/AlibekovAA/toggle-task/internal/task/repository"
	userrepo "github.com/AlibekovAA/toggle-task/internal/user/repository"
)

// Storage holds the three stores for whichever driver is configured.
type Storage struct {
	Driver  string
	Users   userrepo.Repository
	Tasks   taskrepo.Repository
	Revoked authrepo.RevokedSessionRepository
	Pinger  commonhttp.Pinger

	close func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func OpenStorage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*Storage, error) {
	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if _, err := db.Migrate(ctx, pool, log, false); err != nil {
			pool.Close()
			return nil, err
		}
	}

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

	return &Storage{
		Driver:  config.DriverPostgres,
		Users:   userrepo.NewPgRepository(pool),
		Tasks:   taskrepo.NewPgRepository(pool),
		Revoked: authrepo.NewPgRevokedSessionRepository(pool),
		Pinger:  pool,
		close: func() {
			stopMetrics()
			pool.Close()
		},
	}, nil
}

func openSQLite(cfg config.StorageConfig, log *logger.Logger) (*Storage, error) {
	gdb, err := db.OpenSQLite(cfg.SQLitePath, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}

	// The embedded schema is cheap to reconcile, so it is always applied.
	if err := migrateSQLite(gdb); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Storage{
		Driver:  config.DriverSQLite,
		Users:   userrepo.NewGormRepository(gdb),
		Tasks:   taskrepo.NewGormRepository(gdb),
		Revoked: authrepo.NewGormRevokedSessionRepository(gdb),
		Pinger:  sqlPinger{db: sqlDB},
		close: func() {
			if err := sqlDB.Close(); err != nil {
				log.Warnf("failed to close sqlite database: %v", err)
			}
		},
	}, nil
}

func migrateSQLite(gdb *gorm.DB) error {
	return db.AutoMigrateSQLite(gdb,
		&userrepo.UserRecord{},
		&taskrepo.TaskRecord{},
		&authrepo.RevokedSessionRecord{},
	)
}

// Migrate brings the configured store's schema up to date and returns the
// applied (or, with dryRun, pending) versions.
func Migrate(ctx context.Context, cfg config.StorageConfig, log *logger.Logger, dryRun bool) ([]string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return db.Migrate(ctx, pool, log, dryRun)
	case config.DriverSQLite:
		if dryRun {
			log.Infof("sqlite schema is reconciled by auto-migration; nothing to list")
			return nil, nil
		}
		gdb, err := db.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := migrateSQLite(gdb); err != nil {
			return nil, err
		}
		return []string{"sqlite-auto"}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

var _ commonhttp.Pinger = (*pgxpool.Pool)(nil)
