package postgres

import (
	"fmt"
	"strings"
	"time"

	"dispatch/internal/adapters/out/postgres/bidrepo"
	"dispatch/internal/adapters/out/postgres/collabrepo"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config selects the database driver and pool limits. Driver is "postgres"
// or "sqlite"; sqlite is meant for local runs and tests.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// Open connects to the configured database and applies the pool limits.
func Open(cfg Config, log *zap.SugaredLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres", "postgresql":
		dialector = gormpostgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	level := logger.Silent
	if cfg.LogSQL {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if log != nil {
		log.Infow("database_connected", "driver", db.Dialector.Name(), "max_open_conns", cfg.MaxOpenConns)
	}
	return db, nil
}

// Migrate creates or updates every table of the dispatch schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.TrackingPointDTO{},
		&bidrepo.BidDTO{},
		&bidrepo.CounterOfferDTO{},
		&collabrepo.ParticipantDTO{},
		&courierrepo.CourierDTO{},
	)
}
