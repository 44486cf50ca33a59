package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/people/internal/models"
	"github.com/mmynk/people/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store for any database/sql driver that accepts
// "?" placeholders and reports LastInsertId.
type Store struct {
	db     *sql.DB
	schema string
}

// NewStore wraps an open pool. schema is the CREATE TABLE IF NOT EXISTS
// statement for the people table in the pool's dialect.
func NewStore(db *sql.DB, schema string) *Store {
	return &Store{db: db, schema: schema}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that a connection can be established.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Bootstrap creates the people table if it does not exist.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := Exec(ctx, s.db, s.schema); err != nil {
		return fmt.Errorf("failed to create people table: %w", err)
	}
	return nil
}

// ListPeople returns all people ordered by ID.
func (s *Store) ListPeople(ctx context.Context) ([]models.Person, error) {
	people := []models.Person{}
	err := Query(ctx, s.db, "SELECT id, name FROM people ORDER BY id", func(rows *sql.Rows) error {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return err
		}
		people = append(people, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	return people, nil
}

// CreatePerson inserts a person and sets its ID.
func (s *Store) CreatePerson(ctx context.Context, person *models.Person) error {
	result, err := Exec(ctx, s.db, "INSERT INTO people (name) VALUES (?)", person.Name)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	person.ID = id

	return nil
}
