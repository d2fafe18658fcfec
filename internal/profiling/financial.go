// Package profiling detects financial columns and computes descriptive statistics.
package profiling

import (
	"finprobe/domain/report"
	"finprobe/domain/workbook"
)

// FinancialProfiler flags columns whose names match the financial vocabulary
// and describes the leading numeric columns of tables that carry financial data.
type FinancialProfiler struct {
	vocabulary  Vocabulary
	columnLimit int
}

// NewFinancialProfiler creates a profiler; columnLimit caps how many numeric columns get statistics
func NewFinancialProfiler(vocabulary Vocabulary, columnLimit int) *FinancialProfiler {
	return &FinancialProfiler{vocabulary: vocabulary, columnLimit: columnLimit}
}

// Profile builds the financial profile of one table
func (p *FinancialProfiler) Profile(t *workbook.Table) report.FinancialProfile {
	rows, cols := t.Shape()
	numeric := t.NumericColumns()

	profile := report.FinancialProfile{
		Table:            t.Name,
		Rows:             rows,
		Columns:          cols,
		FinancialColumns: []string{},
		NumericColumns:   workbook.ColumnNames(numeric),
		Source:           t,
	}

	for _, c := range t.Columns {
		if p.vocabulary.Matches(c.Name) {
			profile.FinancialColumns = append(profile.FinancialColumns, c.Name)
		}
	}

	if !profile.HasFinancialData() {
		return profile
	}

	for _, c := range limit(numeric, p.columnLimit) {
		if stats, ok := describeColumn(c); ok {
			profile.Stats = append(profile.Stats, stats)
		}
	}
	return profile
}

func describeColumn(c *workbook.Column) (report.ColumnStats, bool) {
	s, err := Describe(c.Floats())
	if err != nil {
		return report.ColumnStats{}, false
	}

	out := report.ColumnStats{
		Column: c.Name,
		Count:  s.Count,
		Mean:   s.Mean,
		Median: s.Median,
	}
	if s.HasStdDev {
		sd := s.StdDev
		out.StdDev = &sd
	}
	if s.Min != s.Max {
		out.Range = &report.Range{Min: s.Min, Max: s.Max}
	}
	return out, true
}

func limit(cols []*workbook.Column, n int) []*workbook.Column {
	if n > 0 && len(cols) > n {
		return cols[:n]
	}
	return cols
}
