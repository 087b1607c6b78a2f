package devicereport

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tenant-reports/internal/config"
	"tenant-reports/internal/domain/device"
	"tenant-reports/internal/graph"
	"tenant-reports/internal/logger"
)

type stubSource struct {
	devices   []device.Record
	truncated bool
	err       error

	deleted    []device.DeletedRecord
	historyErr error
}

func (s *stubSource) ListManagedDevices(ctx context.Context, opts graph.FetchOptions) ([]device.Record, bool, error) {
	return s.devices, s.truncated, s.err
}

func (s *stubSource) ListDeletedDevices(ctx context.Context, since time.Time) ([]device.DeletedRecord, error) {
	return s.deleted, s.historyErr
}

func (s *stubSource) ListRecentEnrollments(ctx context.Context, since time.Time, opts graph.FetchOptions) ([]device.Record, error) {
	return nil, s.historyErr
}

func runCfg(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "production",
		Report: config.ReportConfig{
			OutputDir:         t.TempDir(),
			TopN:              10,
			PageSize:          100,
			OSSheets:          []string{"Windows"},
			HistoryWindowDays: 30,
		},
	}
}

func TestRunWritesWorkbook(t *testing.T) {
	require.NoError(t, logger.Init("production"))

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{devices: testRecords(now), truncated: true}
	svc := NewService(src, runCfg(t))

	path, err := svc.Run(context.Background(), Options{BaseName: "DeviceReport"})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
	assert.Contains(t, f.GetSheetList(), "All Devices")
}

func TestRunHistoryLookupFailureIsNonFatal(t *testing.T) {
	require.NoError(t, logger.Init("production"))

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSource{devices: testRecords(now), historyErr: errors.New("audit log unavailable")}
	svc := NewService(src, runCfg(t))

	path, err := svc.Run(context.Background(), Options{BaseName: "DeviceHistoryReport", IncludeHistory: true})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// The history sheets exist with placeholder rows despite the failure.
	rows, err := f.GetRows("Deleted Devices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "N/A", rows[1][0])
}

func TestRunCSVExportWritesOneFilePerSheet(t *testing.T) {
	require.NoError(t, logger.Init("production"))

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := runCfg(t)
	cfg.Report.CSVExport = true
	src := &stubSource{devices: testRecords(now)}
	svc := NewService(src, cfg)

	path, err := svc.Run(context.Background(), Options{BaseName: "DeviceHistoryReport", IncludeHistory: true})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	dataSheets := len(f.GetSheetList()) - 1 // all but Summary

	csvs, err := filepath.Glob(filepath.Join(cfg.Report.OutputDir, "*.csv"))
	require.NoError(t, err)
	assert.Len(t, csvs, dataSheets)

	names := strings.Join(csvs, " ")
	assert.Contains(t, names, "all_devices")
	assert.Contains(t, names, "noncompliant")
	assert.Contains(t, names, "duplicate_serials")
	assert.Contains(t, names, "deleted_devices")
	assert.Contains(t, names, "recent_enrollments")
}

func TestRunSourceFailureIsFatal(t *testing.T) {
	require.NoError(t, logger.Init("production"))

	src := &stubSource{err: errors.New("fetch failed")}
	svc := NewService(src, runCfg(t))

	_, err := svc.Run(context.Background(), Options{BaseName: "DeviceReport"})
	require.Error(t, err)
}
