// Command mybudget-fakeapi serves the REST contract from memory for
// local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jask/mybudget/internal/config"
	"github.com/jask/mybudget/internal/fakeapi"
	"github.com/jask/mybudget/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mybudget-fakeapi:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(logging.Config{
		Level:     logging.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		Component: "fakeapi",
	})

	seed, err := fakeapi.LoadSeed(cfg.FakeAPI.Seed)
	if err != nil {
		return err
	}
	srv, err := fakeapi.New(seed, fakeapi.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	hs := &http.Server{
		Addr:              cfg.FakeAPI.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", hs.Addr, "base_path", fakeapi.BasePath)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return hs.Shutdown(shutdownCtx)
}
