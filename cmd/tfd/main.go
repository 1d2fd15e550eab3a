// Package main is the entry point for the Token Flex dashboard server.
// It loads configuration, wires the services and serves the HTTP API.
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

	"github.com/j-veylop/tokenflex-dashboard/internal/config"
	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/services"
	"github.com/j-veylop/tokenflex-dashboard/internal/version"
)

const (
	readHeaderTimeout = 10 * time.Second
	// A dropdown submission polls six queries and may take minutes.
	writeTimeout    = 10 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info("tfd"))
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	svcManager, err := services.NewManager(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           svcManager.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr, "version", version.GetVersion(), "history", cfg.DatabasePath != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`tfd - Token Flex usage dashboard server

Usage:
  tfd [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Endpoints:
  GET  /api/contract               List Token Flex contracts
  POST /api/submit-dropdown        Run the usage queries for a contract
  GET  /api/usecase1               Latest usage batch
  GET  /api/history/{accountId}    Persisted batches for a contract
  POST /api/chatbot                Ask the dashboard assistant
  GET  /healthz                    Liveness probe
  GET  /metrics                    Prometheus metrics

Environment Variables:
  APS_CLIENT_ID           APS application client id (required)
  APS_CLIENT_SECRET       APS application client secret (required)
  APS_AUTH_URL            OAuth token endpoint
  TOKENFLEX_BASE_URL      Token Flex API root
  CREDENTIALS_PATH        Refresh token file (default: ~/.config/tokenflex/credentials.json)
  LISTEN_ADDR             Listen address (default: :8080)
  DATABASE_PATH           SQLite history database, "none" to disable
  HISTORY_RETENTION       How long batches are kept (default: 720h)
  REQUEST_MAX_ATTEMPTS    Attempts per rate limited request (default: 3)
  POLL_INTERVAL           Pause between query polls (default: 1s)
  POLL_MAX_ATTEMPTS       Polls per query before giving up, 0 for no limit
  POLL_TIMEOUT            Time budget for collecting results, 0 for no limit
  HTTP_TIMEOUT            Upstream request timeout (default: 30s)
  RATE_LIMIT_RPM          API requests per client per minute, 0 to disable
  CORS_ALLOWED_ORIGINS    Comma separated allowed origins (default: *)
  LOG_LEVEL               debug, info, warn or error (default: info)
  LOG_FORMAT              text or json (default: text)

Configuration:
  The server looks for .env files in the following locations:
  - Current directory
  - ~/.config/tokenflex/.env
  - ~/.tokenflex/.env`)
}
