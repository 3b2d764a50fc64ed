package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ns2pp/internal/api"
	"ns2pp/internal/logger"
	"ns2pp/internal/metrics"
)

// runServe analyzes the trace once and then serves the result until interrupted.
func runServe(args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs("ns2pp serve", args, true, stderr)
	if err != nil {
		return err
	}
	cfg, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Close()
	logger.Infof("Config loaded from: %s", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	result, err := analyze(ctx, cfg, opts.trace, m, stdout, stderr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.NS2PP.Serve.ListenAddr,
		Handler:           api.NewRouter(result, m.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API server starting on %s", server.Addr)
		fmt.Fprintf(stdout, "Serving %d series on %s\n", result.Store.Len(), server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen on %s: %w", server.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Infof("API server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	fmt.Fprintln(stdout, "Done!")
	return nil
}
