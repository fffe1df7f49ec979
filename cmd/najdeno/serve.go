package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/store"
)

// housekeepingInterval is how often expired revocations and idle rate limit
// entries are dropped.
const housekeepingInterval = time.Hour

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Long: `Run the HTTP server. If the database does not exist yet it is created
together with an admin account whose password is printed once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			return serve(cmd, a)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (env NAJDENO_ADDR, default :8080)")
	return cmd
}

func serve(cmd *cobra.Command, a *app) error {
	cfg := a.cfg

	// Auto-init on first run.
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(cmd.Context(), cfg.DBPath, cfg.AdminName, cfg.AdminEmail)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cmd.OutOrStdout(), cfg.DBPath, cfg.AdminEmail, password)
		fmt.Fprintln(cmd.OutOrStdout())
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(cmd.Context(), database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	limiter := api.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	router := api.NewRouter(api.Options{
		DB:           database,
		JWTSecret:    jwtSecret,
		Metrics:      metrics.New(),
		LoginLimiter: limiter,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go housekeeping(ctx, database, limiter)

	errc := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}

	slog.Info("server stopped, closing database")
	return nil
}

// housekeeping periodically purges expired token revocations and forgets
// idle rate limit clients until ctx is done.
func housekeeping(ctx context.Context, database *sql.DB, limiter *api.RateLimiter) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpiredTokens(ctx, database, now)
			if err != nil {
				slog.Error("failed to purge expired tokens", "error", err)
			} else if n > 0 {
				slog.Info("purged expired tokens", "count", n)
			}
			limiter.Cleanup(housekeepingInterval)
		}
	}
}
