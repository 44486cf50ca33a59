// Package backend opens the storage.Store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/people/internal/config"
	"github.com/mmynk/people/internal/storage"
	"github.com/mmynk/people/internal/storage/mysql"
	"github.com/mmynk/people/internal/storage/postgres"
	"github.com/mmynk/people/internal/storage/sqldb"
	"github.com/mmynk/people/internal/storage/sqlite"
)

// Open builds the store named by cfg.DBDriver. Pools connect lazily: an
// unreachable database is logged as a warning and the store is still
// returned, so requests can report the failure themselves.
func Open(ctx context.Context, cfg config.Config) (storage.Store, error) {
	opts := sqldb.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}

	var (
		store storage.Store
		err   error
	)
	switch cfg.DBDriver {
	case config.DriverMySQL:
		store, err = openMySQL(mysql.ConnConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
		}, opts)
	case config.DriverPostgres:
		store, err = openPostgres(ctx, postgres.ConnConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
		}, opts)
	case config.DriverSQLite:
		store, err = openSQLite(cfg.DBPath, opts)
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupportedDriver, cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.DBDriver, err)
	}

	if err := store.Ping(ctx); err != nil {
		slog.Warn("Database not reachable at startup", "driver", cfg.DBDriver, "error", err)
	}
	return store, nil
}

// The helpers below keep a failed constructor from leaking a typed nil
// pointer into the storage.Store interface.

func openMySQL(conn mysql.ConnConfig, opts sqldb.PoolOptions) (storage.Store, error) {
	s, err := mysql.New(conn, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, conn postgres.ConnConfig, opts sqldb.PoolOptions) (storage.Store, error) {
	s, err := postgres.New(ctx, conn, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(path string, opts sqldb.PoolOptions) (storage.Store, error) {
	s, err := sqlite.New(path, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}
