package devicereport

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tenant-reports/internal/config"
	"tenant-reports/internal/domain/device"
	"tenant-reports/internal/graph"
	"tenant-reports/internal/logger"
	"tenant-reports/internal/report/aggregate"
	"tenant-reports/internal/report/render"
)

// Source is the paginated device inventory the report reads from.
type Source interface {
	ListManagedDevices(ctx context.Context, opts graph.FetchOptions) ([]device.Record, bool, error)
	ListDeletedDevices(ctx context.Context, since time.Time) ([]device.DeletedRecord, error)
	ListRecentEnrollments(ctx context.Context, since time.Time, opts graph.FetchOptions) ([]device.Record, error)
}

// Options selects the report variant.
type Options struct {
	// BaseName prefixes the output filename.
	BaseName string
	// IncludeHistory adds the deleted-device and recent-enrollment sheets.
	IncludeHistory bool
}

// Service runs the managed-device compliance report: one fetch, one
// aggregation pass, one workbook.
type Service struct {
	source Source
	cfg    *config.Config
}

func NewService(source Source, cfg *config.Config) *Service {
	return &Service{source: source, cfg: cfg}
}

// Run executes the pipeline and returns the workbook path.
func (s *Service) Run(ctx context.Context, opts Options) (string, error) {
	fetchOpts := graph.FetchOptions{
		PageSize:   s.cfg.Report.PageSize,
		MaxRecords: s.cfg.Report.MaxRecords,
		OSFilter:   s.cfg.Report.OSFilter,
	}

	records, truncated, err := s.source.ListManagedDevices(ctx, fetchOpts)
	if err != nil {
		return "", err
	}
	if truncated {
		logger.Warn("Result set truncated by max-records cap; report covers partial data",
			zap.Int("max_records", s.cfg.Report.MaxRecords),
			zap.Int("records", len(records)),
		)
	}
	logger.Info("Fetched managed devices", zap.Int("count", len(records)))

	now := time.Now()
	var deleted []device.DeletedRecord
	var enrolled []device.Record
	if opts.IncludeHistory {
		since := now.AddDate(0, 0, -s.cfg.Report.HistoryWindowDays)
		deleted, err = s.source.ListDeletedDevices(ctx, since)
		if err != nil {
			logger.Warn("Deletion audit lookup failed; history sheet will be empty", zap.Error(err))
			deleted = nil
		}
		enrolled, err = s.source.ListRecentEnrollments(ctx, since, fetchOpts)
		if err != nil {
			logger.Warn("Enrollment lookup failed; history sheet will be empty", zap.Error(err))
			enrolled = nil
		}
	}

	wb := BuildWorkbook(records, deleted, enrolled, opts, s.cfg.Report, now)

	path, err := render.Render(wb, s.cfg.Report.OutputDir, opts.BaseName, now)
	if err != nil {
		return "", err
	}
	if s.cfg.Report.CSVExport {
		if err := exportCSV(records, deleted, enrolled, opts, s.cfg.Report, now); err != nil {
			return "", err
		}
	}
	return path, nil
}

// BuildWorkbook shapes the fetched records into summary tables, KPIs and
// data sheets in a single pass over the inventory.
func BuildWorkbook(records []device.Record, deleted []device.DeletedRecord, enrolled []device.Record, opts Options, cfg config.ReportConfig, now time.Time) *render.Workbook {
	compliant, noncompliant := 0, 0
	for _, r := range records {
		switch r.ComplianceState {
		case device.StateCompliant:
			compliant++
		case device.StateNoncompliant:
			noncompliant++
		}
	}
	rate := aggregate.ComplianceRate(compliant, noncompliant)

	topN := cfg.TopN
	tables := []render.TableSection{
		{Title: "Compliance State", Entries: aggregate.CountBy(records, complianceKey, "unknown")},
		{Title: "Operating System", Entries: aggregate.CountBy(records, device.Record.OSKey, device.SentinelOS), RowBudget: topN},
		{Title: "Model", Entries: aggregate.CountBy(records, device.Record.ModelKey, device.SentinelModel), RowBudget: topN},
		{Title: "Manufacturer", Entries: aggregate.CountBy(records, device.Record.ManufacturerKey, device.SentinelManufacturer), RowBudget: topN},
		{Title: "Category", Entries: aggregate.CountBy(records, device.Record.CategoryKey, device.SentinelCategory), RowBudget: topN},
		{Title: "Ownership", Entries: aggregate.CountBy(records, device.Record.OwnerKey, device.SentinelOwner)},
		{Title: "Days Since Last Sync", Entries: bucketEntries(records, now)},
		{Title: "Android Enrollment", Entries: androidEnrollment(records), RowBudget: topN},
	}

	duplicates := aggregate.FindDuplicates(records, serialKey, enrolledBefore)

	var sheets []render.DataSheet
	for _, s := range deviceSheets(records, duplicates, cfg) {
		sheets = append(sheets, deviceSheet(s.name, s.records))
	}
	if opts.IncludeHistory {
		sheets = append(sheets, deletedSheet(deleted), deviceSheet("Recent Enrollments", enrolled))
	}

	return &render.Workbook{
		Title: "Managed Device Compliance Report",
		KPIs: []render.KPI{
			{Label: "Total devices", Value: len(records)},
			{Label: "Compliant", Value: compliant},
			{Label: "Noncompliant", Value: noncompliant},
			{Label: "Compliance rate (%)", Value: rate},
			{Label: "Duplicate serial records", Value: len(duplicates)},
		},
		Tables: tables,
		Sheets: sheets,
	}
}

func complianceKey(r device.Record) string { return string(r.ComplianceState) }
func serialKey(r device.Record) string     { return r.SerialNumber }

// enrolledBefore orders duplicate-group members by enrollment time
// ascending; records without one sort last.
func enrolledBefore(a, b device.Record) bool {
	switch {
	case a.EnrolledAt == nil:
		return false
	case b.EnrolledAt == nil:
		return true
	default:
		return a.EnrolledAt.Before(*b.EnrolledAt)
	}
}

func bucketEntries(records []device.Record, now time.Time) []aggregate.Entry {
	buckets := aggregate.BucketByAge(records, func(r device.Record) *time.Time {
		return r.LastSyncAt
	}, now, aggregate.DefaultAgeBoundaries)

	entries := make([]aggregate.Entry, len(buckets))
	for i, b := range buckets {
		entries[i] = aggregate.Entry{Label: b.Label, Count: b.Count}
	}
	return entries
}

// androidEnrollment splits the Android fleet by enrollment type, which is
// how the sub-programs (work profile, fully managed, dedicated) differ.
func androidEnrollment(records []device.Record) []aggregate.Entry {
	android := filterRecords(records, func(r device.Record) bool {
		return r.IsOS("Android")
	})
	return aggregate.CountBy(android, func(r device.Record) string {
		return r.EnrollmentType
	}, "Unknown Enrollment")
}

// sheetRecords pairs a data-sheet name with the records behind it.
type sheetRecords struct {
	name    string
	records []device.Record
}

// deviceSheets lists the device-shaped data sheets in workbook order. The
// workbook and the per-sheet csv export both walk this list so the two
// outputs always carry the same sheets.
func deviceSheets(records, duplicates []device.Record, cfg config.ReportConfig) []sheetRecords {
	set := []sheetRecords{
		{"All Devices", records},
		{"Noncompliant", filterRecords(records, func(r device.Record) bool {
			return r.ComplianceState == device.StateNoncompliant
		})},
	}
	for _, osName := range cfg.OSSheets {
		set = append(set, sheetRecords{osName, filterRecords(records, func(r device.Record) bool {
			return r.IsOS(osName)
		})})
	}
	return append(set, sheetRecords{"Duplicate Serials", duplicates})
}

func filterRecords(records []device.Record, keep func(device.Record) bool) []device.Record {
	var out []device.Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

var deviceHeader = []string{
	"Device Name", "Serial Number", "Model", "Manufacturer",
	"Operating System", "OS Version", "Compliance", "Ownership",
	"Category", "Enrollment Type", "Primary User", "Last Sync", "Enrolled",
}

func deviceSheet(name string, records []device.Record) render.DataSheet {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.DeviceName, r.SerialNumber, strOr(r.Model), strOr(r.Manufacturer),
			strOr(r.OperatingSystem), strOr(r.OSVersion), string(r.ComplianceState), string(r.OwnerType),
			strOr(r.Category), r.EnrollmentType, strOr(r.PrimaryUser), timeOr(r.LastSyncAt), timeOr(r.EnrolledAt),
		})
	}
	return render.DataSheet{Name: name, Header: deviceHeader, Rows: rows}
}

func deletedSheet(deleted []device.DeletedRecord) render.DataSheet {
	rows := make([][]any, 0, len(deleted))
	for _, d := range deleted {
		rows = append(rows, []any{d.DeviceName, d.DeletedAt.Format(timeLayout), d.Actor})
	}
	return render.DataSheet{
		Name:   "Deleted Devices",
		Header: []string{"Device Name", "Deleted At", "Deleted By"},
		Rows:   rows,
	}
}

const timeLayout = "2006-01-02 15:04"

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
