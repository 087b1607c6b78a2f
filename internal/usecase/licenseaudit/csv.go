package licenseaudit

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"tenant-reports/internal/domain/license"
	"tenant-reports/internal/logger"
	"tenant-reports/internal/report/render"
)

type violationRow struct {
	DisplayName     string `csv:"display_name"`
	PrincipalName   string `csv:"principal_name"`
	Enabled         bool   `csv:"enabled"`
	MatchedLicenses string `csv:"matched_licenses"`
	Rules           string `csv:"violated_rules"`
	Count           int    `csv:"violation_count"`
}

func exportCSV(violations []license.Violation, dir string, now time.Time) error {
	rows := make([]violationRow, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, violationRow{
			DisplayName:     v.DisplayName,
			PrincipalName:   v.PrincipalName,
			Enabled:         v.Enabled,
			MatchedLicenses: strings.Join(v.MatchedLicenses, "; "),
			Rules:           strings.Join(v.Rules, "; "),
			Count:           v.Count(),
		})
	}
	path, err := render.WriteCSV(dir, "LicenseAudit", "violations", now, &rows)
	if err != nil {
		return err
	}
	logger.Info("CSV export written", zap.String("path", path))
	return nil
}
