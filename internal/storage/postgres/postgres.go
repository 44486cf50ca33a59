// Package postgres provides a PostgreSQL-backed implementation of the storage.Store
// interface using a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/people/internal/models"
	"github.com/mmynk/people/internal/storage"
	"github.com/mmynk/people/internal/storage/sqldb"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS people (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL
)`

// ConnConfig holds the PostgreSQL connection settings.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// PostgresStore implements storage.Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New builds a pgx pool. The pool dials in the background, so an unreachable
// server does not fail construction.
func New(ctx context.Context, conn ConnConfig, opts sqldb.PoolOptions) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(URL(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		cfg.MaxConns = int32(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		cfg.MinConns = int32(min(opts.MaxIdleConns, opts.MaxOpenConns))
	}
	if opts.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// URL formats conn as a postgres:// connection string.
func URL(conn ConnConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(conn.User, conn.Password),
		Host:   net.JoinHostPort(conn.Host, strconv.Itoa(conn.Port)),
		Path:   "/" + conn.Database,
	}
	return u.String()
}

// withConn acquires a connection from the pool and releases it when fn returns.
func (s *PostgresStore) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks that a connection can be established.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Bootstrap creates the people table if it does not exist.
func (s *PostgresStore) Bootstrap(ctx context.Context) error {
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create people table: %w", err)
	}
	return nil
}

// ListPeople returns all people ordered by ID.
func (s *PostgresStore) ListPeople(ctx context.Context) ([]models.Person, error) {
	var people []models.Person
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, "SELECT id, name FROM people ORDER BY id")
		if err != nil {
			return err
		}
		people, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Person, error) {
			var p models.Person
			err := row.Scan(&p.ID, &p.Name)
			return p, err
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	return people, nil
}

// CreatePerson inserts a person and sets its ID.
func (s *PostgresStore) CreatePerson(ctx context.Context, person *models.Person) error {
	err := s.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx,
			"INSERT INTO people (name) VALUES ($1) RETURNING id",
			person.Name,
		).Scan(&person.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}
