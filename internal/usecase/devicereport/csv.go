package devicereport

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"tenant-reports/internal/config"
	"tenant-reports/internal/domain/device"
	"tenant-reports/internal/logger"
	"tenant-reports/internal/report/aggregate"
	"tenant-reports/internal/report/render"
)

// deviceRow is the flat csv shape of one device record.
type deviceRow struct {
	DeviceName      string `csv:"device_name"`
	SerialNumber    string `csv:"serial_number"`
	Model           string `csv:"model"`
	Manufacturer    string `csv:"manufacturer"`
	OperatingSystem string `csv:"operating_system"`
	OSVersion       string `csv:"os_version"`
	Compliance      string `csv:"compliance_state"`
	Ownership       string `csv:"ownership"`
	Category        string `csv:"category"`
	EnrollmentType  string `csv:"enrollment_type"`
	PrimaryUser     string `csv:"primary_user"`
	LastSync        string `csv:"last_sync"`
	Enrolled        string `csv:"enrolled"`
}

func toRows(records []device.Record) []deviceRow {
	rows := make([]deviceRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, deviceRow{
			DeviceName:      r.DeviceName,
			SerialNumber:    r.SerialNumber,
			Model:           strOr(r.Model),
			Manufacturer:    strOr(r.Manufacturer),
			OperatingSystem: strOr(r.OperatingSystem),
			OSVersion:       strOr(r.OSVersion),
			Compliance:      string(r.ComplianceState),
			Ownership:       string(r.OwnerType),
			Category:        strOr(r.Category),
			EnrollmentType:  r.EnrollmentType,
			PrimaryUser:     strOr(r.PrimaryUser),
			LastSync:        timeOr(r.LastSyncAt),
			Enrolled:        timeOr(r.EnrolledAt),
		})
	}
	return rows
}

// deletedRow is the flat csv shape of one deletion audit entry.
type deletedRow struct {
	DeviceName string `csv:"device_name"`
	DeletedAt  string `csv:"deleted_at"`
	DeletedBy  string `csv:"deleted_by"`
}

func toDeletedRows(deleted []device.DeletedRecord) []deletedRow {
	rows := make([]deletedRow, 0, len(deleted))
	for _, d := range deleted {
		rows = append(rows, deletedRow{
			DeviceName: d.DeviceName,
			DeletedAt:  d.DeletedAt.Format(timeLayout),
			DeletedBy:  d.Actor,
		})
	}
	return rows
}

// sheetSlug turns a sheet name into its csv filename fragment.
func sheetSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// exportCSV mirrors the workbook's data sheets as flat files, one csv per
// sheet, for downstream tooling that prefers flat files.
func exportCSV(records []device.Record, deleted []device.DeletedRecord, enrolled []device.Record, opts Options, cfg config.ReportConfig, now time.Time) error {
	duplicates := aggregate.FindDuplicates(records, serialKey, enrolledBefore)

	written := 0
	for _, sheet := range deviceSheets(records, duplicates, cfg) {
		rows := toRows(sheet.records)
		if _, err := render.WriteCSV(cfg.OutputDir, opts.BaseName, sheetSlug(sheet.name), now, &rows); err != nil {
			return err
		}
		written++
	}
	if opts.IncludeHistory {
		deletedRows := toDeletedRows(deleted)
		if _, err := render.WriteCSV(cfg.OutputDir, opts.BaseName, "deleted_devices", now, &deletedRows); err != nil {
			return err
		}
		enrolledRows := toRows(enrolled)
		if _, err := render.WriteCSV(cfg.OutputDir, opts.BaseName, "recent_enrollments", now, &enrolledRows); err != nil {
			return err
		}
		written += 2
	}

	logger.Info("CSV export written", zap.Int("files", written), zap.String("dir", cfg.OutputDir))
	return nil
}
