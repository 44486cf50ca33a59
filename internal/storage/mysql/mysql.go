// Package mysql provides a MySQL-backed implementation of the storage.Store interface.
package mysql

import (
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/mmynk/people/internal/storage/sqldb"
)

const schema = `
CREATE TABLE IF NOT EXISTS people (
  id INT NOT NULL AUTO_INCREMENT,
  name VARCHAR(255) NOT NULL,

  PRIMARY KEY (id)
)`

// ConnConfig holds the MySQL connection settings.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// New returns a store backed by a lazily connecting MySQL pool.
func New(conn ConnConfig, opts sqldb.PoolOptions) (*sqldb.Store, error) {
	db, err := sqldb.Open("mysql", DSN(conn), opts)
	if err != nil {
		return nil, err
	}
	return sqldb.NewStore(db, schema), nil
}

// DSN formats conn as a go-sql-driver/mysql data source name.
func DSN(conn ConnConfig) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conn.Host, strconv.Itoa(conn.Port))
	cfg.User = conn.User
	cfg.Passwd = conn.Password
	cfg.DBName = conn.Database
	cfg.ParseTime = true
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}
