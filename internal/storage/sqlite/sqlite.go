// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/people/internal/storage/sqldb"
)

// New opens the SQLite database at dbPath, creating parent directories as needed.
// The table is not created here; call Bootstrap.
func New(dbPath string, opts sqldb.PoolOptions) (*sqldb.Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// SQLite allows a single writer; one pooled connection serializes access
	// instead of surfacing SQLITE_BUSY to concurrent requests.
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1

	db, err := sqldb.Open("sqlite", dsn(dbPath), opts)
	if err != nil {
		return nil, err
	}

	return sqldb.NewStore(db, schema), nil
}

func dsn(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
