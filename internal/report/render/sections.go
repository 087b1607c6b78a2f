package render

import "tenant-reports/internal/report/aggregate"

// KPI is one label/value pair on the summary sheet.
type KPI struct {
	Label string
	Value any
}

// TableSection is one frequency table on the summary sheet. RowBudget
// bounds the visible rows; 0 means unbounded.
type TableSection struct {
	Title     string
	Entries   []aggregate.Entry
	RowBudget int
}

// DataSheet is one tabular sheet: a header row plus one row per record.
// Empty sheets still render, with a single placeholder row, so every
// expected sheet always exists.
type DataSheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Workbook is everything the renderer needs for one output file.
type Workbook struct {
	Title  string
	KPIs   []KPI
	Tables []TableSection
	Sheets []DataSheet
}

// OtherLabel names the synthetic row absorbing entries folded by a row
// budget.
const OtherLabel = "Other"

// Collapse bounds a table to budget visible rows: the top budget-1 entries
// stay verbatim and the rest fold into one "Other" row with their summed
// count. Entries are assumed already sorted descending.
func Collapse(entries []aggregate.Entry, budget int) []aggregate.Entry {
	if budget <= 0 || len(entries) <= budget {
		return entries
	}

	kept := make([]aggregate.Entry, budget-1, budget)
	copy(kept, entries[:budget-1])

	other := 0
	for _, e := range entries[budget-1:] {
		other += e.Count
	}
	return append(kept, aggregate.Entry{Label: OtherLabel, Count: other})
}
