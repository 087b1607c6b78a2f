package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tenant-reports/internal/config"
	"tenant-reports/internal/graph"
	"tenant-reports/internal/logger"
	"tenant-reports/internal/usecase/devicereport"
)

func main() {
	pflag.Int("REPORT_MAX_RECORDS", 0, "cap on fetched records, 0 for unlimited")
	pflag.Int("REPORT_PAGE_SIZE", 200, "server page-size hint")
	pflag.Int("REPORT_TOP_N", 10, "row budget for summary tables")
	pflag.StringSlice("REPORT_OS_FILTER", nil, "allow-list filter on operating system")
	pflag.String("REPORT_OUTPUT_DIR", "reports", "destination directory")
	pflag.Bool("REPORT_CSV_EXPORT", false, "also export the inventory as CSV")
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

	if err := cfg.ValidateSource(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	log := logger.WithRunID(runID)
	log.Info("Starting device compliance report")

	client := graph.NewClient(cfg.Graph)
	svc := devicereport.NewService(client, cfg)

	path, err := svc.Run(ctx, devicereport.Options{BaseName: "DeviceReport"})
	if err != nil {
		log.Fatal("Report run failed", zap.Error(err))
	}
	log.Info("Report written", zap.String("path", path))
}
