package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	appErrors "tenant-reports/pkg/errors"
)

const summarySheet = "Summary"

// Placeholder fills the single row written onto a data sheet that has no
// records, so the sheet still exists with its expected shape.
const Placeholder = "N/A"

// OutputPath builds the timestamp-qualified destination so runs never
// overwrite each other.
func OutputPath(dir, baseName string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", baseName, now.Format("20060102_150405")))
}

// Render writes the workbook to dir, creating it if absent. Exactly one
// file is written; any I/O failure is a RenderError.
func Render(wb *Workbook, dir, baseName string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", appErrors.NewRenderError("creating output directory "+dir, err)
	}
	path := OutputPath(dir, baseName, now)
	if _, err := os.Stat(path); err == nil {
		return "", appErrors.NewRenderError("output file already exists: "+path, nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", appErrors.NewRenderError("naming summary sheet", err)
	}
	if err := writeSummary(f, wb, now); err != nil {
		return "", err
	}
	for _, sheet := range wb.Sheets {
		if err := writeDataSheet(f, sheet); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", appErrors.NewRenderError("writing workbook "+path, err)
	}
	return path, nil
}

func writeSummary(f *excelize.File, wb *Workbook, now time.Time) error {
	if err := setRow(f, summarySheet, 1, 1, []any{wb.Title}); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 1, 2, []any{"Generated", now.Format(time.RFC1123)}); err != nil {
		return err
	}

	row := 4
	for _, kpi := range wb.KPIs {
		if err := setRow(f, summarySheet, 1, row, []any{kpi.Label, kpi.Value}); err != nil {
			return err
		}
		row++
	}

	// Frequency tables sit side by side below the KPI block, two columns
	// each with one spacer column between tables.
	tableTop := row + 2
	for i, table := range wb.Tables {
		col := 1 + i*3
		if err := setRow(f, summarySheet, col, tableTop, []any{table.Title, "Count"}); err != nil {
			return err
		}
		entries := Collapse(table.Entries, table.RowBudget)
		if len(entries) == 0 {
			if err := setRow(f, summarySheet, col, tableTop+1, []any{Placeholder, 0}); err != nil {
				return err
			}
			continue
		}
		for j, e := range entries {
			if err := setRow(f, summarySheet, col, tableTop+1+j, []any{e.Label, e.Count}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDataSheet(f *excelize.File, sheet DataSheet) error {
	if _, err := f.NewSheet(sheet.Name); err != nil {
		return appErrors.NewRenderError("creating sheet "+sheet.Name, err)
	}
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := setRow(f, sheet.Name, 1, 1, header); err != nil {
		return err
	}

	rows := sheet.Rows
	if len(rows) == 0 {
		placeholder := make([]any, len(sheet.Header))
		for i := range placeholder {
			placeholder[i] = Placeholder
		}
		rows = [][]any{placeholder}
	}
	for i, r := range rows {
		if err := setRow(f, sheet.Name, 1, 2+i, r); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return appErrors.NewRenderError("addressing cell", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return appErrors.NewRenderError("writing row to "+sheet, err)
	}
	return nil
}
