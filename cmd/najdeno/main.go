package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. If logPath is non-empty, all
// levels are also written to that file, which the caller must close.
func setupLogger(logPath string) (*os.File, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var f *os.File
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		var err error
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return f, nil
}

// app carries the configuration shared by all subcommands.
type app struct {
	envFile string
	cfg     config.Config
	logFile *os.File
}

// execute runs root and closes the log file however the command ended.
func (a *app) execute(root *cobra.Command) error {
	defer func() {
		if a.logFile != nil {
			a.logFile.Close()
		}
	}()
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	var dbPath, logPath string

	root := &cobra.Command{
		Use:   "najdeno",
		Short: "Campus lost and found service",
		Long: `Najdeno runs the lost and found service: users report lost and found
items and file claims, administrators approve or reject them.

Settings are read from NAJDENO_* environment variables, optionally loaded
from a .env file. Flags take precedence over the environment.

Examples:
  # Start the server, creating the database on first run
  najdeno --db najdeno.sqlite3 serve --addr :8080

  # Give an existing account the admin role
  najdeno user promote desk@uni.example`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("log") {
				cfg.LogPath = logPath
			}
			a.cfg = cfg

			a.logFile, err = setupLogger(cfg.LogPath)
			return err
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "file with NAJDENO_* variables")
	root.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (env NAJDENO_DB)")
	root.PersistentFlags().StringVarP(&logPath, "log", "l", "", "also write logs to this file (env NAJDENO_LOG)")

	serve := newServeCmd(a)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newInitCmd(a), newUserCmd(a))
	return root
}

func main() {
	a := &app{}
	if err := a.execute(newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
