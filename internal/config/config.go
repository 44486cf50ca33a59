// Package config resolves the service settings from defaults, an optional
// .env file, environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBPath     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Default returns the settings the service runs with when nothing is overridden.
func Default() Config {
	return Config{
		Port:              3000,
		DBDriver:          DriverMySQL,
		DBHost:            "db",
		DBName:            "db",
		DBUser:            "root",
		DBPassword:        "root",
		DBPath:            "./data/people.db",
		MaxOpenConns:      10,
		MaxIdleConns:      5,
		ConnMaxLifetime:   5 * time.Minute,
		LogLevel:          "info",
		LogFormat:         "text",
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load reads .env from the working directory if present, then the environment,
// then args (typically os.Args[1:]). It returns flag.ErrHelp when args ask for
// usage.
func Load(args []string) (Config, error) {
	// Missing .env is fine; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(args, os.LookupEnv)
}

// Parse builds a Config from lookup and args without touching the process environment.
func Parse(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver: mysql, postgres or sqlite")
	fs.StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "database host")
	fs.IntVar(&cfg.DBPort, "db-port", cfg.DBPort, "database port (0 selects the driver default)")
	fs.StringVar(&cfg.DBName, "db-name", cfg.DBName, "database name")
	fs.StringVar(&cfg.DBUser, "db-user", cfg.DBUser, "database user")
	fs.StringVar(&cfg.DBPassword, "db-password", cfg.DBPassword, "database password")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database file")
	fs.IntVar(&cfg.MaxOpenConns, "db-max-open-conns", cfg.MaxOpenConns, "maximum open database connections")
	fs.IntVar(&cfg.MaxIdleConns, "db-max-idle-conns", cfg.MaxIdleConns, "maximum idle database connections")
	fs.DurationVar(&cfg.ConnMaxLifetime, "db-conn-max-lifetime", cfg.ConnMaxLifetime, "maximum lifetime of a database connection")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.DurationVar(&cfg.ReadHeaderTimeout, "http-read-header-timeout", cfg.ReadHeaderTimeout, "time allowed to read request headers")
	fs.DurationVar(&cfg.ReadTimeout, "http-read-timeout", cfg.ReadTimeout, "time allowed to read a whole request")
	fs.DurationVar(&cfg.WriteTimeout, "http-write-timeout", cfg.WriteTimeout, "time allowed to write a response")
	fs.DurationVar(&cfg.IdleTimeout, "http-idle-timeout", cfg.IdleTimeout, "keep-alive idle timeout")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown window")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DBPort == 0 {
		cfg.DBPort = defaultDBPort(cfg.DBDriver)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be mysql, postgres or sqlite", c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = d
		}
		return nil
	}

	str("DB_DRIVER", &c.DBDriver)
	str("DB_HOST", &c.DBHost)
	str("DB_NAME", &c.DBName)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_PATH", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	return errors.Join(
		num("PORT", &c.Port),
		num("DB_PORT", &c.DBPort),
		num("DB_MAX_OPEN_CONNS", &c.MaxOpenConns),
		num("DB_MAX_IDLE_CONNS", &c.MaxIdleConns),
		dur("DB_CONN_MAX_LIFETIME", &c.ConnMaxLifetime),
		dur("HTTP_READ_HEADER_TIMEOUT", &c.ReadHeaderTimeout),
		dur("HTTP_READ_TIMEOUT", &c.ReadTimeout),
		dur("HTTP_WRITE_TIMEOUT", &c.WriteTimeout),
		dur("HTTP_IDLE_TIMEOUT", &c.IdleTimeout),
		dur("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout),
	)
}

func defaultDBPort(driver string) int {
	switch driver {
	case DriverPostgres:
		return 5432
	case DriverMySQL:
		return 3306
	default:
		return 0
	}
}
