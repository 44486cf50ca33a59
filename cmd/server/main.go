package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/people/internal/config"
	"github.com/mmynk/people/internal/metrics"
	"github.com/mmynk/people/internal/server"
	"github.com/mmynk/people/internal/service"
	"github.com/mmynk/people/internal/storage"
	"github.com/mmynk/people/internal/storage/backend"
	"github.com/mmynk/people/pkg/logging"
)

const (
	connectTimeout   = 10 * time.Second
	bootstrapTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		slog.Error("Failed to listen", "address", cfg.Addr(), "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, ln); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// run serves on ln until ctx is canceled. An unreachable database does not
// stop it; requests answer with their failure responses instead.
func run(ctx context.Context, cfg config.Config, ln net.Listener) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	store, err := backend.Open(connectCtx, cfg)
	cancel()
	if err != nil {
		ln.Close()
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.DBDriver, "host", cfg.DBHost, "database", cfg.DBName)

	bootstrap(ctx, store)

	srv := server.New(service.NewPeopleService(store), metrics.New())

	// h2c serves HTTP/2 without TLS alongside HTTP/1.1.
	httpServer := &http.Server{
		Handler:           h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "address", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// bootstrap creates the people table. Failure is logged and the server keeps
// running, since the schema may be managed elsewhere.
func bootstrap(ctx context.Context, store storage.Store) {
	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	if err := store.Bootstrap(ctx); err != nil {
		slog.Error("Table bootstrap failed", "error", err)
		return
	}
	slog.Info("Table bootstrap complete")
}
