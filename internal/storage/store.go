// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/people/internal/models"
)

// ErrUnsupportedDriver is returned when the configured database driver is unknown.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Store defines the interface for people storage operations.
// This abstraction allows swapping storage backends (MySQL, PostgreSQL, SQLite)
// without changing the service layer.
type Store interface {
	// Bootstrap creates the people table if it does not exist yet.
	// It is safe to call more than once.
	Bootstrap(ctx context.Context) error

	// ListPeople returns every stored person ordered by ID.
	ListPeople(ctx context.Context) ([]models.Person, error)

	// CreatePerson inserts a new person.
	// The person.ID field will be populated by the store.
	CreatePerson(ctx context.Context, person *models.Person) error

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
