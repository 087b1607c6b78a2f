package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tenant-reports/internal/config"
	"tenant-reports/internal/launcher"
	"tenant-reports/internal/logger"
	"tenant-reports/internal/routes"
)

func main() {
	pflag.String("LAUNCHER_ADDR", "127.0.0.1:8765", "listen address")
	pflag.String("LAUNCHER_SCRIPTS_DIR", ".", "directory to discover report binaries in")
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	self, err := os.Executable()
	if err != nil {
		logger.Fatal("Cannot determine own executable path", zap.Error(err))
	}

	runner := launcher.NewRunner()
	runner.OnChange(func(status launcher.RunStatus) {
		logger.Info("Run status changed",
			zap.String("script", status.Script),
			zap.String("state", string(status.State)),
		)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go runner.Watch(ctx, cfg.Launcher.PollInterval)

	router := routes.SetupRoutes(cfg, runner, self)

	server := &http.Server{
		Addr:         cfg.Launcher.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Launcher starting",
			zap.String("address", cfg.Launcher.Addr),
			zap.String("scripts_dir", cfg.Launcher.ScriptsDir),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}
}
