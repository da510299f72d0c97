package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benaskins/greeter/internal/config"
	"github.com/benaskins/greeter/internal/logging"
	"github.com/benaskins/greeter/internal/server"
	"github.com/spf13/cobra"
)

const defaultShutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the greeting server",
	Long:  "Bind PORT (default 5001) on all interfaces and serve the greeting on GET /. Fails immediately if the port cannot be bound.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, settingsErr := config.Load(settingsPath)
	if settingsErr != nil {
		settings = &config.File{}
	}

	out := cmd.OutOrStdout()
	level := new(slog.LevelVar)
	logger := logging.New(out, settings.LogFormat, level)
	applyLogLevel(logger, level, settings.LogLevel)
	slog.SetDefault(logger)

	// Configuration problems never stop the server; only a bind failure does.
	if settingsErr != nil {
		logger.Warn("ignoring settings file", "path", settingsPath, "error", settingsErr)
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		logger.Warn("ignoring env file", "path", envFile, "error", err)
	}

	cfg, err := config.Resolve(os.Getenv)
	if err != nil {
		logger.Warn("ignoring PORT, using default", "error", err, "port", cfg.Port)
	}

	opts := server.Options{Logger: logger}
	if settings.AccessLog {
		opts.AccessLog = out
	}
	srv := server.New(opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settingsPath != "" {
		go watchSettings(ctx, logger, level)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenTCP(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	timeout := settings.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}

func watchSettings(ctx context.Context, logger *slog.Logger, level *slog.LevelVar) {
	err := config.Watch(ctx, settingsPath, logger, func(f *config.File) {
		applyLogLevel(logger, level, f.LogLevel)
		logger.Info("settings reloaded", "log_level", level.Level().String())
	})
	if err != nil {
		logger.Debug("settings watch disabled", "path", settingsPath, "error", err)
	}
}

func applyLogLevel(logger *slog.Logger, level *slog.LevelVar, s string) {
	lvl, err := logging.ParseLevel(s)
	if err != nil {
		logger.Warn("invalid log_level, using info", "error", err)
	}
	level.Set(lvl)
}
