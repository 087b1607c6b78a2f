package licenseaudit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tenant-reports/internal/config"
	"tenant-reports/internal/domain/license"
	"tenant-reports/internal/graph"
	"tenant-reports/internal/logger"
	"tenant-reports/internal/report/aggregate"
	"tenant-reports/internal/report/render"
	"tenant-reports/internal/report/rules"
)

// Source is the licensed-user fetch the audit reads from.
type Source interface {
	ListLicensedUsers(ctx context.Context, opts graph.FetchOptions) ([]license.UserRecord, bool, error)
}

// Service audits user license assignments against the configured rule set.
type Service struct {
	source Source
	cfg    *config.Config
	engine *rules.Engine
}

func NewService(source Source, cfg *config.Config) *Service {
	engine := rules.NewEngine(
		cfg.Licensing.Groups,
		cfg.Licensing.SKUNames,
		rules.DefaultRules(config.GroupPremium, config.GroupF3, config.GroupF3Allowed),
	)
	return &Service{source: source, cfg: cfg, engine: engine}
}

// Run executes the audit and returns the workbook path.
func (s *Service) Run(ctx context.Context) (string, error) {
	users, truncated, err := s.source.ListLicensedUsers(ctx, graph.FetchOptions{
		PageSize:   s.cfg.Report.PageSize,
		MaxRecords: s.cfg.Report.MaxRecords,
	})
	if err != nil {
		return "", err
	}
	if truncated {
		logger.Warn("User list truncated by max-records cap; audit covers partial data",
			zap.Int("max_records", s.cfg.Report.MaxRecords),
		)
	}
	logger.Info("Fetched licensed users", zap.Int("count", len(users)))

	now := time.Now()
	wb := BuildWorkbook(users, s.engine, s.cfg.Report.TopN)

	path, err := render.Render(wb, s.cfg.Report.OutputDir, "LicenseAudit", now)
	if err != nil {
		return "", err
	}
	if s.cfg.Report.CSVExport {
		if err := exportCSV(s.engine.EvaluateAll(users), s.cfg.Report.OutputDir, now); err != nil {
			return "", err
		}
	}
	return path, nil
}

// BuildWorkbook evaluates every user and shapes the findings.
func BuildWorkbook(users []license.UserRecord, engine *rules.Engine, topN int) *render.Workbook {
	tracked := 0
	for _, u := range users {
		if engine.HoldsTracked(u) {
			tracked++
		}
	}
	violations := engine.EvaluateAll(users)

	ruleCounts := aggregate.CountBy(flattenRules(violations), func(name string) string {
		return name
	}, "Unknown Rule")

	return &render.Workbook{
		Title: "License Overprovisioning Audit",
		KPIs: []render.KPI{
			{Label: "Licensed users scanned", Value: len(users)},
			{Label: "Users holding tracked licenses", Value: tracked},
			{Label: "Users in violation", Value: len(violations)},
		},
		Tables: []render.TableSection{
			{Title: "Violations by Rule", Entries: ruleCounts, RowBudget: topN},
		},
		Sheets: []render.DataSheet{violationSheet(violations)},
	}
}

func flattenRules(violations []license.Violation) []string {
	var names []string
	for _, v := range violations {
		names = append(names, v.Rules...)
	}
	return names
}

func violationSheet(violations []license.Violation) render.DataSheet {
	rows := make([][]any, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []any{
			v.DisplayName,
			v.PrincipalName,
			v.Enabled,
			strings.Join(v.MatchedLicenses, "; "),
			strings.Join(v.Rules, "; "),
			v.Count(),
		})
	}
	return render.DataSheet{
		Name:   "Violations",
		Header: []string{"Display Name", "Principal Name", "Enabled", "Matched Licenses", "Violated Rules", "Violation Count"},
		Rows:   rows,
	}
}
