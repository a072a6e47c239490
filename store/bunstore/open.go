package bunstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
)

// Driver selects the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config describes a database connection.
type Config struct {
	Driver Driver
	DSN    string

	// Debug logs every query through bundebug.
	Debug bool

	// MaxOpenConns limits the pool. Zero leaves the driver default. In-memory sqlite
	// databases need 1, since every connection opens its own database.
	MaxOpenConns int
}

// DefaultConfig returns an in-memory sqlite configuration.
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("bunstore: unsupported driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("bunstore: dsn is required")
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("bunstore: max open conns must be non-negative")
	}
	return nil
}

// Open connects to the database described by cfg and pings it.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var db *bun.DB
	switch cfg.Driver {
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("bunstore: open sqlite: %w", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("failed to close database connection", zap.Error(cerr))
		}
		return nil, fmt.Errorf("bunstore: ping %s: %w", cfg.Driver, err)
	}

	logger.Info("database connected", zap.String("driver", string(cfg.Driver)))
	return db, nil
}
